package types

import (
	"crypto/sha256"
	"io"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// Hash is the content digest: a sha2-256 multihash over the variant tag
// followed by the canonical payload bytes. It is comparable and used as the
// dedup key.
type Hash string

// HashOf returns the digest of c.
func HashOf(c ClipboardContent) Hash {
	if c.hash != "" || c.IsZero() {
		return c.hash
	}
	return computeHash(c)
}

func computeHash(c ClipboardContent) Hash {
	h := sha256.New()
	h.Write([]byte{c.kind.tag()})
	switch c.kind {
	case KindText:
		io.WriteString(h, c.text)
	case KindImage:
		h.Write(c.img.Data)
	case KindFiles:
		for i, p := range c.files {
			if i > 0 {
				io.WriteString(h, filesSep)
			}
			io.WriteString(h, p)
		}
	}
	mh, err := multihash.Encode(h.Sum(nil), multihash.SHA2_256)
	if err != nil {
		// sha2-256 with a 32 byte digest always encodes
		panic(err)
	}
	return Hash(mh)
}

// ParseHash parses the base58 form returned by String.
func ParseHash(s string) (Hash, error) {
	mh, err := multihash.FromB58String(s)
	if err != nil {
		return "", err
	}
	return Hash(mh), nil
}

// String returns the base58 encoding of the multihash.
func (h Hash) String() string {
	if h == "" {
		return ""
	}
	return multihash.Multihash(h).B58String()
}

// Short returns an abbreviated form for logs and listings.
func (h Hash) Short() string {
	s := h.String()
	if len(s) > 12 {
		return s[len(s)-12:]
	}
	return s
}

// CID returns a CIDv1 (raw codec) addressing the payload, used as the
// reference of payloads that are not persisted inline.
func (h Hash) CID() cid.Cid {
	return cid.NewCidV1(cid.Raw, multihash.Multihash(h))
}
