// Package variant derives stable cart line identities from
// (product, size, color) triples.
package variant

// sep keeps distinct triples from colliding. Plain concatenation is
// ambiguous ("a"+"bc" == "ab"+"c"); the unit separator never appears
// in catalog tokens.
const sep = "\x1f"

// Key returns the identity for a purchasable variant. Pure and
// deterministic; equal triples always map to the same key and distinct
// triples never collide.
//
// No case or whitespace normalization is applied: the catalog must
// supply consistent size/color tokens. Two listings spelling the same
// color differently will not merge.
func Key(productID, size, color string) string {
	return productID + sep + size + sep + color
}
