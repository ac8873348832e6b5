//go:build nocodeccheck

package codec

const selfCheck = false
