//go:build !noos

package testing

func setup() {}
