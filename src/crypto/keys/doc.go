// Package keys implements the public key cryptography used by benchmark
// accounts.
//
// Every account owns a secp256k1 key-pair. Transactions are signed with the
// private key, and the ledger verifies them with the public key that travels
// alongside the signed transaction. The account address is derived from the
// uncompressed form of the public key (see types.AddressFromPublicKey).
package keys
