// Package wpgp implements a minimal PGP-like secure container format.
//
// # Identities
//
// An [Identity] is an RSA keypair bound to a name, mail address, comment and
// an optional validity window measured in whole days. Identities are created
// with [Create] or loaded from a key container with [ImportPrivateKey] and
// [ImportPublicKey]. Handles returned by [Identity.Share] and [Identity.Public]
// share the same key material, which is wiped when the last handle is closed.
//
// # Containers
//
// Every exported key and every encrypted message uses one wire layout:
//
//	body | header | sha256(body || header) | trailer
//
// The trailer carries the "WPGP" tag, a random 4-byte mask and the offsets
// of the three segments. Body and header are XORed with the mask and base64
// encoded, so no JSON metadata appears in clear. The mask is not a secret.
//
// Key containers carry a JSON header with the identity metadata. Message
// containers carry a header holding the session key, wrapped with RSA-OAEP
// under the identity's public key.
//
// # Messages and streams
//
// [EncryptMessage] and [DecryptMessage] work on whole buffers. [EncryptStream]
// and [DecryptStream] produce the same bytes incrementally: the body is
// emitted as the source is read, and the header, digest and trailer follow
// once the source ends. Decryption reads the trailer first, so it needs random
// access to the container; other sources are spooled to a temporary file.
//
// Signatures are not part of the format; [Sign] and [VerifySignature] always
// return [ErrSignatureUnsupported].
package wpgp
