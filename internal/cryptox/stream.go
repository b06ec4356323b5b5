package cryptox

import (
	"bufio"
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/smazurov/progresslapse/internal/common"
)

// Ciphertext layout:
//
//	magic (4) | version (1) | nonce prefix (8) | chunk*
//	chunk = ct length (4, big-endian) | AES-GCM sealed bytes
//
// Each chunk seals up to chunkSize plaintext bytes under a 12-byte nonce
// built from the random prefix, a chunk counter and a final-chunk bit.
// The counter defeats chunk reordering, the final bit defeats
// truncation at a chunk boundary. Memory use is bounded by chunkSize
// regardless of input size.
const (
	streamVersion  = 1
	chunkSize      = 64 * 1024
	noncePrefixLen = 8

	finalFlag = uint32(1 << 31)
)

var streamMagic = []byte("PLSE")

// MediaCipher encrypts and decrypts media streams under keys derived
// per user. Safe for concurrent use; every call derives its own key and
// cipher state.
type MediaCipher struct {
	deriver *KeyDeriver
}

func NewMediaCipher(deriver *KeyDeriver) *MediaCipher {
	return &MediaCipher{deriver: deriver}
}

func (c *MediaCipher) newAEAD(userID string) (cipher.AEAD, error) {
	block, err := aes.NewCipher(c.deriver.DeriveKey(userID))
	if err != nil {
		return nil, fmt.Errorf("new cipher: %w", err)
	}
	return cipher.NewGCM(block)
}

func chunkNonce(prefix []byte, counter uint32, last bool) []byte {
	nonce := make([]byte, 12)
	copy(nonce, prefix)
	if last {
		counter |= finalFlag
	}
	binary.BigEndian.PutUint32(nonce[noncePrefixLen:], counter)
	return nonce
}

// EncryptStream reads plaintext from src and writes self-describing
// ciphertext to dst, keyed for userID. The output carries everything
// needed for a later, independent DecryptStream call.
func (c *MediaCipher) EncryptStream(dst io.Writer, src io.Reader, userID string) error {
	aead, err := c.newAEAD(userID)
	if err != nil {
		return err
	}

	prefix := make([]byte, noncePrefixLen)
	if _, err := rand.Read(prefix); err != nil {
		return fmt.Errorf("nonce: %w", err)
	}

	header := make([]byte, 0, len(streamMagic)+1+noncePrefixLen)
	header = append(header, streamMagic...)
	header = append(header, streamVersion)
	header = append(header, prefix...)
	if _, err := dst.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	br := bufio.NewReaderSize(src, 1)
	buf := make([]byte, chunkSize)
	sealed := make([]byte, 0, chunkSize+aead.Overhead())
	var lenBuf [4]byte

	for counter := uint32(0); ; counter++ {
		n, rerr := io.ReadFull(br, buf)
		if rerr != nil && !errors.Is(rerr, io.EOF) && !errors.Is(rerr, io.ErrUnexpectedEOF) {
			return fmt.Errorf("read plaintext: %w", rerr)
		}

		last := rerr != nil // EOF or short read ends the stream
		if !last {
			// Full chunk; only final if nothing follows.
			if _, perr := br.Peek(1); perr == io.EOF {
				last = true
			} else if perr != nil {
				return fmt.Errorf("read plaintext: %w", perr)
			}
		}

		sealed = aead.Seal(sealed[:0], chunkNonce(prefix, counter, last), buf[:n], nil)
		binary.BigEndian.PutUint32(lenBuf[:], uint32(len(sealed)))
		if _, err := dst.Write(lenBuf[:]); err != nil {
			return fmt.Errorf("write ciphertext: %w", err)
		}
		if _, err := dst.Write(sealed); err != nil {
			return fmt.Errorf("write ciphertext: %w", err)
		}

		if last {
			return nil
		}
	}
}

// DecryptStream reads ciphertext produced by EncryptStream from src and
// writes the recovered plaintext to dst. A chunk is written only after
// it authenticates, so a failing call never emits bytes from the
// failing chunk; any tampering, truncation, reordering or key mismatch
// yields common.ErrDecryption.
func (c *MediaCipher) DecryptStream(dst io.Writer, src io.Reader, userID string) error {
	aead, err := c.newAEAD(userID)
	if err != nil {
		return err
	}

	header := make([]byte, len(streamMagic)+1+noncePrefixLen)
	if _, err := io.ReadFull(src, header); err != nil {
		return fmt.Errorf("%w: short header", common.ErrDecryption)
	}
	if !bytes.Equal(header[:len(streamMagic)], streamMagic) || header[len(streamMagic)] != streamVersion {
		return fmt.Errorf("%w: unrecognized format", common.ErrDecryption)
	}
	prefix := header[len(streamMagic)+1:]

	var lenBuf [4]byte
	sealed := make([]byte, 0, chunkSize+aead.Overhead())
	plain := make([]byte, 0, chunkSize)

	for counter := uint32(0); ; counter++ {
		if _, err := io.ReadFull(src, lenBuf[:]); err != nil {
			// The final chunk carries the termination flag, so running
			// out of chunks here means the stream was cut short.
			return fmt.Errorf("%w: truncated stream", common.ErrDecryption)
		}
		ctLen := binary.BigEndian.Uint32(lenBuf[:])
		if ctLen < uint32(aead.Overhead()) || ctLen > chunkSize+uint32(aead.Overhead()) {
			return fmt.Errorf("%w: invalid chunk size", common.ErrDecryption)
		}
		sealed = sealed[:ctLen]
		if _, err := io.ReadFull(src, sealed); err != nil {
			return fmt.Errorf("%w: truncated chunk", common.ErrDecryption)
		}

		last := false
		plain, err = aead.Open(plain[:0], chunkNonce(prefix, counter, false), sealed, nil)
		if err != nil {
			plain, err = aead.Open(plain[:0], chunkNonce(prefix, counter, true), sealed, nil)
			if err != nil {
				return fmt.Errorf("%w: chunk authentication failed", common.ErrDecryption)
			}
			last = true
		}

		if _, err := dst.Write(plain); err != nil {
			return fmt.Errorf("write plaintext: %w", err)
		}

		if last {
			// Anything after the final chunk is tampering.
			if _, err := io.ReadFull(src, lenBuf[:1]); err != io.EOF {
				return fmt.Errorf("%w: trailing data", common.ErrDecryption)
			}
			return nil
		}
	}
}
