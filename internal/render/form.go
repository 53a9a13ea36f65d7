// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package render

import "net/url"

// Form carries submitted values and per-field errors back into a
// re-rendered form.
type Form struct {
	Values url.Values
	Errors map[string]string
}

// NewForm wraps submitted values. A nil map yields an empty form.
func NewForm(values url.Values) *Form {
	if values == nil {
		values = url.Values{}
	}
	return &Form{Values: values, Errors: map[string]string{}}
}

// WithErrors attaches field errors and returns the form.
func (f *Form) WithErrors(errs map[string]string) *Form {
	for field, msg := range errs {
		f.Errors[field] = msg
	}
	return f
}

// Get returns the submitted value of field.
func (f *Form) Get(field string) string {
	return f.Values.Get(field)
}

// Set sets an initial value.
func (f *Form) Set(field, value string) {
	f.Values.Set(field, value)
}

// Error returns the error message of field, if any.
func (f *Form) Error(field string) string {
	return f.Errors[field]
}

// HasErrors reports whether any field failed validation.
func (f *Form) HasErrors() bool {
	return len(f.Errors) > 0
}

// Checked reports whether a checkbox field was submitted as on.
func (f *Form) Checked(field string) bool {
	v := f.Values.Get(field)
	return v == "on" || v == "true" || v == "1"
}

// NonFieldErrors keys errors that belong to the form as a whole.
const NonFieldErrors = "__all__"
