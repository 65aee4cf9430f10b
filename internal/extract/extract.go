package extract

// Extract runs the three extractors independently over the same immutable
// text and assembles one result. It is pure and deterministic: identical
// input yields identical output, with no shared state and no I/O, so it is
// safe to call concurrently.
//
// Empty or whitespace-only input yields the documented floor: nil supplier,
// default document, empty product list.
func Extract(text string) Result {
	return Result{
		Supplier: ExtractSupplier(text),
		Document: ExtractDocument(text),
		Products: ExtractProducts(text),
	}
}
