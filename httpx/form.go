package httpx

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/ajg/form"
)

// MaxFormMemory bounds the multipart parts kept in memory, uploads included.
const MaxFormMemory = 10 << 20

// MaxFormIndex bounds the list indexes of dotted keys. The decoder grows a
// list up to the largest index it is given.
const MaxFormIndex = 100

var ErrFormIndex = errors.New("form list index out of range")

// ParseForm parses urlencoded and multipart bodies alike.
func ParseForm(r *http.Request) error {
	err := r.ParseMultipartForm(MaxFormMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		return r.ParseForm()
	}
	return err
}

// DecodeForm fills dst from the posted fields of r. Nested fields use dotted
// keys, e.g. "employees.0.name"; keys dst does not know are skipped.
func DecodeForm(r *http.Request, dst any) error {
	if err := ParseForm(r); err != nil {
		return err
	}
	if err := checkIndexes(r.PostForm); err != nil {
		return err
	}
	d := form.NewDecoder(nil)
	d.IgnoreUnknownKeys(true)
	return d.DecodeValues(dst, r.PostForm)
}

func checkIndexes(values map[string][]string) error {
	for key := range values {
		for _, part := range strings.Split(key, ".") {
			i, err := strconv.Atoi(part)
			if err == nil && (i < 0 || i >= MaxFormIndex) {
				return fmt.Errorf("%w: %s", ErrFormIndex, key)
			}
		}
	}
	return nil
}
