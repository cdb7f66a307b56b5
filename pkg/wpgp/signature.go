package wpgp

// Sign is reserved for detached signatures, which the format does not
// define yet.
func Sign(id *Identity, data []byte) ([]byte, error) {
	return nil, ErrSignatureUnsupported
}

// VerifySignature is reserved for detached signatures, which the format
// does not define yet.
func VerifySignature(id *Identity, data, signature []byte) error {
	return ErrSignatureUnsupported
}
