package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryGet(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)

	doc := reg.Get("GET")
	require.NotNil(t, doc)
	assert.Equal(t, "GET", doc.Command)

	// case insensitive
	require.NotNil(t, reg.Get("get"))

	compound := reg.Get("CLIENT INFO")
	require.NotNil(t, compound)
	assert.Equal(t, "CLIENT INFO", compound.Command)

	assert.Nil(t, reg.Get("NONEXISTENT_CMD_XYZ"))
}

func TestRegistryAppCommands(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)

	for _, name := range []string{"EXIT", "SAFEKEYS", "VIEW", "WATCHINCR", "METRICS"} {
		doc := reg.Get(name)
		if assert.NotNil(t, doc, name) {
			assert.Equal(t, "application", doc.Group, name)
		}
	}
}

func TestRegistryTransactionCommands(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)

	for _, name := range []string{"MULTI", "EXEC", "DISCARD", "WATCH", "UNWATCH"} {
		doc := reg.Get(name)
		if assert.NotNil(t, doc, name) {
			assert.Equal(t, "transactions", doc.Group, name)
		}
	}
}

func TestRegistryIsDangerous(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)

	assert.True(t, reg.IsDangerous("FLUSHDB"))
	assert.True(t, reg.IsDangerous("keys"))
	assert.False(t, reg.IsDangerous("GET"))
}

func TestRegistryGetCommandsPrefix(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)

	assert.Contains(t, reg.GetCommands("CLI"), "CLIENT INFO")
	assert.Contains(t, reg.GetCommands("wat"), "WATCH")
	assert.Contains(t, reg.GetCommands("wat"), "WATCHINCR")
}

func TestMergeServerCommands(t *testing.T) {
	t.Run("new command added", func(t *testing.T) {
		reg, err := NewRegistry()
		require.NoError(t, err)
		require.Nil(t, reg.Get("NEWCMD"))

		reg.MergeServerCommands([]ServerCommand{
			{Name: "NEWCMD", Arity: -2, ACLCats: []string{"@string", "@read"}},
		})

		doc := reg.Get("NEWCMD")
		require.NotNil(t, doc)
		assert.Equal(t, "arg1 [arg ...]", doc.Arguments)
		assert.Equal(t, "string", doc.Group)
		assert.Contains(t, reg.GetCommands("NEWC"), "NEWCMD")
	})

	t.Run("existing command preserved", func(t *testing.T) {
		reg, err := NewRegistry()
		require.NoError(t, err)
		original := *reg.Get("GET")

		reg.MergeServerCommands([]ServerCommand{
			{Name: "GET", Arity: 2, ACLCats: []string{"@string", "@read", "@fast"}},
		})

		assert.Equal(t, original, *reg.Get("GET"))
	})

	t.Run("subcommands merged", func(t *testing.T) {
		reg, err := NewRegistry()
		require.NoError(t, err)

		reg.MergeServerCommands([]ServerCommand{{
			Name:        "NEWPARENT",
			Arity:       -1,
			Subcommands: []ServerCommand{{Name: "NEWPARENT CHILD", Arity: 3}},
		}})

		require.NotNil(t, reg.Get("NEWPARENT"))
		child := reg.Get("NEWPARENT CHILD")
		require.NotNil(t, child)
		assert.Equal(t, "arg1 arg2", child.Arguments)
	})
}

func TestArityHint(t *testing.T) {
	tests := []struct {
		arity int64
		want  string
	}{
		{0, ""},
		{1, ""},
		{2, "arg1"},
		{3, "arg1 arg2"},
		{-1, "[arg ...]"},
		{-2, "arg1 [arg ...]"},
		{-3, "arg1 arg2 [arg ...]"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, arityHint(tc.arity), "arity %d", tc.arity)
	}
}

func TestPrimaryACLGroup(t *testing.T) {
	tests := []struct {
		cats []string
		want string
	}{
		{[]string{"@read", "@string", "@fast"}, "string"},
		{[]string{"@write", "@hash", "@slow"}, "hash"},
		{[]string{"@read", "@fast"}, ""},
		{[]string{"@admin", "@slow", "@dangerous"}, "admin"},
		{[]string{"@pubsub", "@slow"}, "pubsub"},
		{nil, ""},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, primaryACLGroup(tc.cats), "cats %v", tc.cats)
	}
}

func TestRegistryAttrs(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)

	tests := []struct {
		name string
		want Attr
	}{
		{"GET", 0},
		{"blpop", Blocking},
		{"XREADGROUP", Blocking},
		{"WAIT", Blocking},
		{"DEL", Dangerous},
		{"QUIT", Local},
		{"METRICS", Local},
		{"SAFEKEYS", Local | NoQueue},
		{"CONNECT", Local | NoQueue},
		{"MULTI", Local | NoQueue},
		{"WATCH", NoQueue},
		{"SUBSCRIBE", NoQueue},
		{"NONEXISTENT_CMD_XYZ", 0},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, reg.Attrs(tc.name), tc.name)
	}

	assert.True(t, reg.IsBlocking("BRPOP"))
	assert.False(t, reg.IsBlocking("RPOP"))
}

func TestAttrHas(t *testing.T) {
	a := Local | NoQueue
	assert.True(t, a.Has(Local))
	assert.True(t, a.Has(Local|NoQueue))
	assert.False(t, a.Has(Local|Blocking))
	assert.True(t, Attr(0).Has(0))
}

func TestMergeServerCommandAttrs(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)

	reg.MergeServerCommands([]ServerCommand{
		{Name: "NEWBLOCK", Arity: -3, ACLCats: []string{"@list", "@blocking", "@slow"}},
		{Name: "NEWWIPE", Arity: 1, ACLCats: []string{"@keyspace", "@write", "@dangerous"}},
		// Known commands keep their attributes.
		{Name: "GET", Arity: 2, ACLCats: []string{"@string", "@dangerous"}},
	})

	assert.Equal(t, Blocking, reg.Attrs("NEWBLOCK"))
	assert.Equal(t, "list", reg.Get("NEWBLOCK").Group)
	assert.Equal(t, Dangerous, reg.Attrs("newwipe"))
	assert.False(t, reg.IsDangerous("GET"))
}

func TestRegistryCompletionIsSorted(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)

	got := reg.GetCommands("S")
	require.NotEmpty(t, got)
	assert.IsNonDecreasing(t, got)
	assert.Empty(t, reg.GetCommands("ZZZNOPE"))
}
