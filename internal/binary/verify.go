package binary

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp" //nolint:staticcheck // Using ProtonMail's maintained fork
	"github.com/jedisct1/go-minisign"
)

// Verifier checks downloads against checksums and detached signatures.
type Verifier struct{}

// NewVerifier creates a new verifier
func NewVerifier() *Verifier {
	return &Verifier{}
}

// VerifySHA256 checks filePath against the entry for assetName in the sums
// file at checksumPath. Sidecar files holding only a digest are accepted.
func (v *Verifier) VerifySHA256(filePath, assetName, checksumPath string) error {
	actual, err := calculateSHA256(filePath)
	if err != nil {
		return fmt.Errorf("calculate checksum: %w", err)
	}

	expected, err := findChecksum(checksumPath, assetName)
	if err != nil {
		return fmt.Errorf("find checksum: %w", err)
	}

	if !strings.EqualFold(actual, expected) {
		return fmt.Errorf("%w: checksum mismatch for %s:\nactual:   %s\nexpected: %s",
			ErrVerificationFailed, assetName, actual, expected)
	}
	return nil
}

// VerifyPGP checks a detached signature, armored or binary, against keyring.
func (v *Verifier) VerifyPGP(filePath, signaturePath string, keyring openpgp.EntityList) error {
	if len(keyring) == 0 {
		return fmt.Errorf("keyring is empty")
	}

	binaryFile, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer binaryFile.Close()

	sigFile, err := os.Open(signaturePath)
	if err != nil {
		return fmt.Errorf("open signature: %w", err)
	}
	defer sigFile.Close()

	_, err = openpgp.CheckArmoredDetachedSignature(keyring, binaryFile, sigFile, nil)
	if err != nil {
		// Try non-armored signature
		if _, serr := binaryFile.Seek(0, io.SeekStart); serr != nil {
			return fmt.Errorf("rewind file: %w", serr)
		}
		if _, serr := sigFile.Seek(0, io.SeekStart); serr != nil {
			return fmt.Errorf("rewind signature: %w", serr)
		}
		_, err = openpgp.CheckDetachedSignature(keyring, binaryFile, sigFile, nil)
	}
	if err != nil {
		return fmt.Errorf("%w: pgp signature: %v", ErrVerificationFailed, err)
	}
	return nil
}

// VerifyMinisign checks a minisign signature with the public key file.
func (v *Verifier) VerifyMinisign(filePath, signaturePath, pubKeyPath string) error {
	pubKey, err := minisign.NewPublicKeyFromFile(pubKeyPath)
	if err != nil {
		return fmt.Errorf("read minisign pubkey: %w", err)
	}

	sig, err := minisign.NewSignatureFromFile(signaturePath)
	if err != nil {
		return fmt.Errorf("read minisign signature: %w", err)
	}

	content, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	valid, err := pubKey.Verify(content, sig)
	if err != nil {
		return fmt.Errorf("%w: minisign: %v", ErrVerificationFailed, err)
	}
	if !valid {
		return fmt.Errorf("%w: minisign signature rejected", ErrVerificationFailed)
	}
	return nil
}

// calculateSHA256 calculates the SHA256 checksum of a file
func calculateSHA256(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// findChecksum finds the checksum for filename in a sums file.
// Format: "abc123def456  filename.tar.gz", optionally "*filename" for
// binary mode. A file whose only content is a digest matches any name.
func findChecksum(checksumPath, filename string) (string, error) {
	file, err := os.Open(checksumPath)
	if err != nil {
		return "", fmt.Errorf("open checksum file: %w", err)
	}
	defer file.Close()

	var lone string
	lines := 0
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		lines++
		if len(parts) == 1 {
			if isHexDigest(parts[0]) {
				lone = parts[0]
			}
			continue
		}

		name := strings.TrimPrefix(parts[1], "*")
		if name == filename || filepath.Base(name) == filename {
			return parts[0], nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("scan checksum file: %w", err)
	}

	if lines == 1 && lone != "" {
		return lone, nil
	}
	return "", fmt.Errorf("checksum not found for %s", filename)
}

func isHexDigest(s string) bool {
	if len(s) != sha256.Size*2 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
