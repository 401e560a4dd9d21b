// Package binary turns a selected release asset into something installed.
//
// The Manager downloads an asset into a private work directory, verifies it
// when the release publishes a checksum or a signature the user trusts, and
// extracts archives. Placers then install the result: BinPlacer copies an
// executable into the bin directory and PackagePlacer hands .deb and .rpm
// files to the system package manager.
//
// # Verification
//
// Checks run strongest first:
//  1. Detached PGP (.asc/.sig) or minisign (.minisig) signature, when a
//     trusted key for the tool exists in the KeyStore.
//  2. SHA256 from a sidecar (.sha256) or a release-wide sums file.
//
// A failed check aborts the install. A release with neither is installed
// unverified and the caller is told so.
package binary
