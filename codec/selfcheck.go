//go:build !nocodeccheck

package codec

const selfCheck = true
