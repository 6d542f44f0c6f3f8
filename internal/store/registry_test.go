package store

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ArmandoYairZJ/FrontEnd/internal/session"
)

func TestRegistryReusesAndDropsStores(t *testing.T) {
	r := NewRegistry(nil)
	ident := session.Identity{ID: "u1"}

	a := r.For("sid-1", ident)
	require.Same(t, a, r.For("sid-1", ident))
	require.NotSame(t, a, r.For("sid-2", ident))

	r.Drop("sid-1")
	require.NotSame(t, a, r.For("sid-1", ident))
}
