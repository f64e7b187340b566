package arv

// NumRootKeyHashes is the number of trusted root key hashes built into the
// firmware. It is recorded in the high nibble of every digest mismatch
// detail as NumRootKeyHashes+1, so it must stay below 15.
const NumRootKeyHashes = 2

var _ = [0x0F - (1 + NumRootKeyHashes)]struct{}{}

// CheckRootKeyHashCount compares the runtime number of provisioned root key
// hashes with NumRootKeyHashes. A mismatch would make every digest mismatch
// detail lie about the image, so it is reported as an Internal error instead.
func CheckRootKeyHashCount(provisioned int) error {
	if provisioned == NumRootKeyHashes {
		return nil
	}
	code := uint16(0xFFFF)
	if provisioned >= 0 && provisioned < 0xFFFF {
		code = uint16(provisioned)
	}

	return Internal(InternalRootKeyHashCount, code)
}
