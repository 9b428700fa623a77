/*
 * Copyright 2026 National Library of Norway.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *       http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package warcparquet

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base32"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"hash"
	"strings"
)

type digestEncoding uint8

const (
	unknown digestEncoding = 0
	Base16  digestEncoding = 1
	Base32  digestEncoding = 2
	Base64  digestEncoding = 3
)

func (d digestEncoding) encode(sum []byte) string {
	switch d {
	case Base16:
		return strings.ToUpper(hex.EncodeToString(sum))
	case Base32:
		return base32.StdEncoding.EncodeToString(sum)
	case Base64:
		return base64.StdEncoding.EncodeToString(sum)
	default:
		return string(sum)
	}
}

func (d digestEncoding) decode(s string) ([]byte, error) {
	switch d {
	case Base16:
		return hex.DecodeString(s)
	case Base32:
		return base32.StdEncoding.DecodeString(strings.ToUpper(s))
	case Base64:
		return base64.StdEncoding.DecodeString(s)
	default:
		return nil, fmt.Errorf("unknown digest encoding")
	}
}

func algorithmSize(algorithm string) int {
	switch algorithm {
	case "md5":
		return md5.Size
	case "sha1":
		return sha1.Size
	case "sha256":
		return sha256.Size
	case "sha512":
		return sha512.Size
	default:
		return 0
	}
}

func newHash(algorithm string) hash.Hash {
	switch algorithm {
	case "md5":
		return md5.New()
	case "sha1":
		return sha1.New()
	case "sha256":
		return sha256.New()
	case "sha512":
		return sha512.New()
	default:
		return nil
	}
}

func detectEncoding(algorithm, digest string) digestEncoding {
	algorithmLength := algorithmSize(algorithm)
	if algorithmLength == 0 {
		return unknown
	}
	if algorithm == "md5" && len(digest) == 32 {
		// Special handling for md5 where encoded length are the same for base16 and base32.
		// Distinction can be done on base32 padding
		if strings.HasSuffix(digest, "=") {
			return Base32
		}
		return Base16
	}
	switch len(digest) {
	case algorithmLength * 2:
		return Base16
	case base32.StdEncoding.EncodedLen(algorithmLength):
		return Base32
	case base64.StdEncoding.EncodedLen(algorithmLength):
		return Base64
	}
	return unknown
}

type digest struct {
	algorithm string
	value     string
	encoding  digestEncoding
}

// parseDigest splits a labelled digest like 'sha1:UZY6ND6CCHXETFVJD2MSS7ZENMWF7KQ2'.
//
// The algorithm label is case insensitive and may contain a hyphen, like 'SHA-1'.
// Digests using an algorithm unknown to this package are accepted as long as they have the
// 'algorithm:value' form. Their encoding is reported as unknown.
func parseDigest(s string) (*digest, error) {
	algorithm, value, ok := strings.Cut(s, ":")
	if !ok {
		return nil, fmt.Errorf("missing algorithm label in digest '%s'", s)
	}
	algorithm = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(algorithm)), "-", "")
	value = strings.TrimSpace(value)
	if algorithm == "" {
		return nil, fmt.Errorf("empty algorithm label in digest '%s'", s)
	}
	if value == "" {
		return nil, fmt.Errorf("empty value in digest '%s'", s)
	}

	d := &digest{algorithm: algorithm, value: value}
	if algorithmSize(algorithm) == 0 {
		return d, nil
	}
	d.encoding = detectEncoding(algorithm, value)
	if d.encoding == unknown {
		return nil, fmt.Errorf("digest value has wrong length for %s: '%s'", algorithm, value)
	}
	if _, err := d.encoding.decode(value); err != nil {
		return nil, fmt.Errorf("malformed %s digest '%s': %w", algorithm, value, err)
	}
	return d, nil
}

func checkDigest(value string) error {
	_, err := parseDigest(value)
	return err
}

// validate computes the digest of b and compares it to the parsed value.
// Digests with unknown algorithms are not validated.
func (d *digest) validate(b []byte) error {
	h := newHash(d.algorithm)
	if h == nil {
		return nil
	}
	_, _ = h.Write(b)
	computed := d.encoding.encode(h.Sum(nil))
	match := strings.EqualFold(d.value, computed)
	if d.encoding == Base64 {
		match = d.value == computed
	}
	if !match {
		return fmt.Errorf("wrong digest: expected %s:%s, computed: %s:%s", d.algorithm, d.value, d.algorithm, computed)
	}
	return nil
}

// computeDigest returns the labelled digest of b using the given algorithm and encoding.
func computeDigest(algorithm string, encoding digestEncoding, b []byte) (string, error) {
	h := newHash(algorithm)
	if h == nil {
		return "", fmt.Errorf("unsupported digest algorithm '%s'", algorithm)
	}
	_, _ = h.Write(b)
	return fmt.Sprintf("%s:%s", algorithm, encoding.encode(h.Sum(nil))), nil
}
