//go:build invariants

package Trees

const invariantsEnabled = true
