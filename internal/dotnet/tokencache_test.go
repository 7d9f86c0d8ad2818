package dotnet

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildTokenCache(t *testing.T) {
	md := &Metadata{
		Imports: []Symbol{
			{Token: 0x0A000001, Namespace: "System.Net", Class: "WebClient", Name: "DownloadFile"},
		},
		NativeImports: []Symbol{
			{Token: 0x0A000002, Module: "kernel32", Name: "CreateFileA"},
		},
		Methods: []Symbol{
			{Token: 0x06000001, Namespace: "App", Class: "Program", Name: "Main"},
		},
		Fields: []Symbol{
			{Token: 0x04000001, Namespace: "App", Class: "Program", Name: "config"},
		},
		Types: []Symbol{
			{Token: 0x02000002, Namespace: "App", Class: "Program"},
		},
	}

	cache, err := BuildTokenCache(md)
	require.NoError(t, err)

	imp, ok := cache.GetImport(0x0A000001)
	require.True(t, ok)
	require.Equal(t, "System.Net.WebClient::DownloadFile", imp.FullName())

	nat, ok := cache.GetNativeImport(0x0A000002)
	require.True(t, ok)
	require.Equal(t, "kernel32.CreateFileA", nat.FullName())

	m, ok := cache.GetMethod(0x06000001)
	require.True(t, ok)
	require.Equal(t, "App.Program::Main", m.FullName())

	fld, ok := cache.GetField(0x04000001)
	require.True(t, ok)
	require.Equal(t, "App.Program::config", fld.FullName())

	typ, ok := cache.GetType(0x02000002)
	require.True(t, ok)
	require.Equal(t, "App.Program", typ.FullName())
}

func TestTokenCacheLookupsAreTotal(t *testing.T) {
	cache, err := BuildTokenCache(&Metadata{})
	require.NoError(t, err)

	// Absent tokens are an explicit absence for any u32 input, never a
	// default-valued symbol and never a panic.
	for _, token := range []uint32{0, 1, 0x06000001, 0xFFFFFFFF} {
		_, ok := cache.GetImport(token)
		require.False(t, ok)
		_, ok = cache.GetNativeImport(token)
		require.False(t, ok)
		_, ok = cache.GetMethod(token)
		require.False(t, ok)
		_, ok = cache.GetField(token)
		require.False(t, ok)
		_, ok = cache.GetType(token)
		require.False(t, ok)
	}
}

func TestDuplicateTokenRejected(t *testing.T) {
	md := &Metadata{
		Methods: []Symbol{
			{Token: 0x06000001, Class: "A", Name: "First"},
			{Token: 0x06000001, Class: "A", Name: "Second"},
		},
	}
	_, err := BuildTokenCache(md)
	require.ErrorIs(t, err, ErrDuplicateToken)
}

func TestSameTokenAcrossCategories(t *testing.T) {
	// Categories are independent tables; the same numeric token may
	// appear in different categories without conflict.
	md := &Metadata{
		Imports: []Symbol{{Token: 0x0A000001, Class: "A", Name: "X"}},
		Fields:  []Symbol{{Token: 0x0A000001, Class: "B", Name: "Y"}},
	}
	_, err := BuildTokenCache(md)
	require.NoError(t, err)
}
