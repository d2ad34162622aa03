package types

const (
	MemoSeparator = " || "
	NativeSymbol  = "NEAR"
)

// FormatMemoRecord combines memo text and price into the stored record "<memo> || <price>NEAR"
func FormatMemoRecord(memoText, price string) string {
	return memoText + MemoSeparator + price + NativeSymbol
}
