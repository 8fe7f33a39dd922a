// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package security

// SecureBuffer owns a byte slice holding document content and zeroes it on Clear.
//
// Limitations: Go's garbage collector may move or copy memory at any time, and
// string conversions (e.g. in String()) create immutable copies that cannot be
// zeroed. Clear() reduces the window of exposure but cannot guarantee that no
// copies exist elsewhere in the heap.
type SecureBuffer struct {
	data []byte
}

// NewSecureBuffer takes ownership of data. The caller must not keep using it.
func NewSecureBuffer(data []byte) *SecureBuffer {
	return &SecureBuffer{data: data}
}

// Bytes returns the underlying slice. It is zeroed by Clear.
func (sb *SecureBuffer) Bytes() []byte {
	return sb.data
}

// String returns a copy of the content. The copy is not covered by Clear.
func (sb *SecureBuffer) String() string {
	return string(sb.data)
}

// Len returns the content length in bytes
func (sb *SecureBuffer) Len() int {
	return len(sb.data)
}

// Clear overwrites the content with zeros and releases it
func (sb *SecureBuffer) Clear() {
	WipeBytes(sb.data)
	sb.data = nil
}

// WipeBytes zeroes b in place
func WipeBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
