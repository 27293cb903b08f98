package pipeline

import (
	"encoding/json"
	"net/http"
)

// Descriptor is one logical API call. It is immutable once built and safe to pass by value.
type Descriptor struct {
	method        string
	url           string
	body          []byte
	bodyErr       error
	onAuthFailure func()
}

// NewDescriptor builds a call to url. A nil body sends no payload; anything else is encoded as JSON here, once.
func NewDescriptor(method, url string, body any) Descriptor {
	d := Descriptor{method: method, url: url}
	if body != nil {
		d.body, d.bodyErr = json.Marshal(body)
	}
	return d
}

// Get is shorthand for a GET descriptor without a body.
func Get(url string) Descriptor { return NewDescriptor(http.MethodGet, url, nil) }

// Post is shorthand for a POST descriptor.
func Post(url string, body any) Descriptor { return NewDescriptor(http.MethodPost, url, body) }

// Patch is shorthand for a PATCH descriptor.
func Patch(url string, body any) Descriptor { return NewDescriptor(http.MethodPatch, url, body) }

// Delete is shorthand for a DELETE descriptor without a body.
func Delete(url string) Descriptor { return NewDescriptor(http.MethodDelete, url, nil) }

// WithAuthFailure returns a copy of d that calls fn when credential refresh fails.
func (d Descriptor) WithAuthFailure(fn func()) Descriptor {
	d.onAuthFailure = fn
	return d
}

func (d Descriptor) Method() string { return d.method }
func (d Descriptor) URL() string    { return d.url }
func (d Descriptor) HasBody() bool  { return d.body != nil }

// Body returns a copy of the encoded payload.
func (d Descriptor) Body() []byte {
	if d.body == nil {
		return nil
	}
	return append([]byte(nil), d.body...)
}
