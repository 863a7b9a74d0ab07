// AngelaMos | 2026
// bind.go

package core

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"

	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 1 << 20

// validate is safe for concurrent use and caches struct metadata.
var validate = sync.OnceValue(NewValidator)

// Bind decodes the JSON body into dst and runs struct validation. On
// failure the 400 has already been written and Bind returns false.
func Bind(w http.ResponseWriter, r *http.Request, dst any) bool {
	return bind(w, r, dst, false)
}

// BindOptional is Bind for endpoints whose body may be omitted.
func BindOptional(w http.ResponseWriter, r *http.Request, dst any) bool {
	return bind(w, r, dst, true)
}

func bind(w http.ResponseWriter, r *http.Request, dst any, optional bool) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
	if err != nil && !(optional && errors.Is(err, io.EOF)) {
		BadRequest(w, "invalid request body")
		return false
	}

	if err := validate().Struct(dst); err != nil {
		var invalid *validator.InvalidValidationError
		if errors.As(err, &invalid) {
			return true
		}
		BadRequest(w, FormatValidationError(err))
		return false
	}
	return true
}
