package sigscheme

import "xdao.co/zkcred/credential"

// Structural checks signature and key sizes only. It performs no cryptographic verification.
type Structural struct{}

func (Structural) Scheme() string { return NameStructural }

func (Structural) Verify(_, signature, pubkey []byte) error {
	return credential.CheckSignatureStructure(signature, pubkey)
}
