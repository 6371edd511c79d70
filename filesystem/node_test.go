package filesystem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFile_TypedByExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		fileName  string
		wantLabel string
		wantIcon  string
	}{
		{"txt", "notes.txt", "txt file", IconTxt},
		{"pdf", "report.pdf", "pdf document", IconPdf},
		{"upper case ext", "IMAGE.PNG", "png file", IconPng},
		{"last ext wins", "archive.tar.zip", "zip file", IconZip},
		{"unknown ext", "readme.md", UnknownFileType.Label, IconUnknown},
		{"no ext", "Makefile", UnknownFileType.Label, IconUnknown},
		{"trailing dot", "weird.", UnknownFileType.Label, IconUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			n := NewFile(tt.fileName)
			assert.Equal(t, FileKind, n.Kind())
			assert.Equal(t, tt.wantLabel, n.Label())
			assert.Equal(t, tt.wantIcon, n.IconKey())
			assert.Empty(t, n.RealPath())
		})
	}
}

func TestNewFile_WithRealPath(t *testing.T) {
	t.Parallel()

	n := NewFile("a.txt", WithRealPath("/tmp/x/a.txt"))
	assert.Equal(t, "/tmp/x/a.txt", n.RealPath())
	assert.Equal(t, IconTxt, n.IconKey(), "icon must survive extra options")
}

func TestNode_AddRemoveChild(t *testing.T) {
	t.Parallel()

	parent := NewFolder("A")
	c1 := NewFile("1.txt")
	c2 := NewFile("2.txt")

	parent.AddChild(c1)
	parent.AddChild(c2)

	require.Equal(t, 2, parent.ChildCount())
	assert.Same(t, parent, c1.Parent())
	assert.Equal(t, []*Node{c1, c2}, parent.Children())

	got, ok := parent.GetChild("2.txt")
	require.True(t, ok)
	assert.Same(t, c2, got)

	_, ok = parent.GetChild("2.TXT")
	assert.False(t, ok, "name lookup is case-sensitive")

	assert.True(t, parent.RemoveChild(c1))
	assert.Nil(t, c1.Parent())
	assert.False(t, parent.RemoveChild(c1), "second remove must report missing child")
	assert.Equal(t, []*Node{c2}, parent.Children())
}

func TestNode_ChildrenIsCopy(t *testing.T) {
	t.Parallel()

	parent := NewFolder("A")
	parent.AddChild(NewFile("1.txt"))

	kids := parent.Children()
	kids[0] = nil

	assert.NotNil(t, parent.Children()[0])
}

func TestNode_IsAncestorOf(t *testing.T) {
	t.Parallel()

	a := NewFolder("A")
	b := NewFolder("B")
	c := NewFile("c.txt")
	a.AddChild(b)
	b.AddChild(c)

	assert.True(t, a.IsAncestorOf(c))
	assert.True(t, b.IsAncestorOf(c))
	assert.False(t, c.IsAncestorOf(a))
	assert.False(t, a.IsAncestorOf(a), "a node is not its own ancestor")
}

func TestKindForLabel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, SystemKind, KindForLabel(SystemLabel))
	assert.Equal(t, DriveKind, KindForLabel(DriveLabel))
	assert.Equal(t, DriveKind, KindForLabel("驱动器"))
	assert.Equal(t, FolderKind, KindForLabel(FolderLabel))
	assert.Equal(t, FolderKind, KindForLabel("文件夹"))
	assert.Equal(t, FileKind, KindForLabel("pdf document"))
	assert.Equal(t, FileKind, KindForLabel(""))
}

func TestKind_IsContainer(t *testing.T) {
	t.Parallel()

	assert.True(t, SystemKind.IsContainer())
	assert.True(t, DriveKind.IsContainer())
	assert.True(t, FolderKind.IsContainer())
	assert.False(t, FileKind.IsContainer())
}

func TestIconRegistry_CoversFileTypes(t *testing.T) {
	t.Parallel()

	icons := DefaultIcons()
	for _, ext := range Extensions() {
		ft := FileTypeFor("x." + ext)
		assert.True(t, icons.Has(ft.Icon), "icon for %s must be registered", ext)
	}
	assert.True(t, icons.Has(IconFolder))
	assert.False(t, icons.Has("treeItem_bogus"))
}

func TestNewDemoTree(t *testing.T) {
	t.Parallel()

	roots := NewDemoTree()

	require.Len(t, roots, 1)
	sys := roots[0]
	assert.Equal(t, DemoSystemName, sys.Name())
	assert.Equal(t, SystemKind, sys.Kind())
	require.Equal(t, len(DemoDrives), sys.ChildCount())
	for i, d := range sys.Children() {
		assert.Equal(t, DemoDrives[i], d.Name())
		assert.Equal(t, DriveKind, d.Kind())
		require.Equal(t, 2, d.ChildCount())
		for _, f := range d.Children() {
			assert.Equal(t, FolderKind, f.Kind())
			file, ok := f.GetChild(DemoFileName)
			require.True(t, ok)
			assert.Equal(t, "txt file", file.Label())
		}
	}
}
