package repo_test

import (
	"testing"

	"github.com/thezakman/tapik/internal/repo"
	"github.com/thezakman/tapik/internal/repo/memory"
)

// Compile-time interface satisfaction check; external test package avoids
// an import cycle.
func TestInterfaceSatisfaction(t *testing.T) {
	var _ repo.RunStore = memory.New()
}
