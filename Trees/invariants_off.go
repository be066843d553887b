//go:build !invariants

package Trees

// invariantsEnabled turns on the checks that cost more than O(1): ownership
// of nodes and a full Check after every mutation. Build with -tags invariants.
const invariantsEnabled = false
