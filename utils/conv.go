package utils

import (
	"bytes"

	"github.com/pkg/errors"
	"golang.org/x/text/transform"

	"github.com/mogaika/upackage/config"
)

// Decodes single-byte text up to the first zero through the configured charmap
func BytesToString(bs []byte) (string, error) {
	s, _, err := transform.Bytes(config.GetEncoding().NewDecoder(), bs[:BytesStringLength(bs)])
	if err != nil {
		return "", errors.Wrap(err, "decode string")
	}
	return string(s), nil
}

func BytesStringLength(bs []byte) int {
	if l := bytes.IndexByte(bs, 0); l == -1 {
		return len(bs)
	} else {
		return l
	}
}

// Fails when s has runes outside of the configured charmap
func StringToBytes(s string, nilTerminate bool) ([]byte, error) {
	bs, _, err := transform.Bytes(config.GetEncoding().NewEncoder(), []byte(s))
	if err != nil {
		return nil, errors.Wrapf(err, "encode string %q", s)
	}
	if nilTerminate {
		bs = append(bs, 0)
	}
	return bs, nil
}

func AlignUp(v int64, align int64) int64 {
	return ((v + align - 1) / align) * align
}
