package filesystem

import (
	"errors"
	"testing"
	"time"

	"github.com/brettbedarf/vtree/config"
	"github.com/brettbedarf/vtree/internal/mocks"
	"github.com/brettbedarf/vtree/internal/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func createTestConfig() *config.Config {
	return &config.Config{
		LogLvl:           util.InfoLevel,
		DocumentPath:     "filesystem.json",
		BackingStore:     config.MemoryBackingStore,
		MaterializeFiles: true,
		DropMode:         config.DropCopy,
	}
}

// testTree holds the nodes of:
//
//	My Computer
//	└── C:
//	    ├── A
//	    │   └── x.txt
//	    └── B
type testTree struct {
	fs    *FileSystem
	sys   *Node
	drive *Node
	a     *Node
	x     *Node
	b     *Node
}

func createTestTree(t *testing.T, m *mocks.MockMaterializer) *testTree {
	t.Helper()
	tt := &testTree{
		sys:   NewNode("My Computer", SystemKind, SystemLabel, WithIcon(IconComputer)),
		drive: NewNode("C:", DriveKind, DriveLabel, WithIcon(IconDisk)),
		a:     NewFolder("A"),
		x:     NewFile("x.txt"),
		b:     NewFolder("B"),
	}
	tt.sys.AddChild(tt.drive)
	tt.drive.AddChild(tt.a)
	tt.a.AddChild(tt.x)
	tt.drive.AddChild(tt.b)

	if m == nil {
		tt.fs = NewFS(createTestConfig(), nil)
	} else {
		tt.fs = NewFS(createTestConfig(), m)
	}
	tt.fs.SetRoots([]*Node{tt.sys})
	require.Equal(t, 5, tt.fs.Len())
	return tt
}

func childNames(n *Node) []string {
	var out []string
	for _, c := range n.Children() {
		out = append(out, c.Name())
	}
	return out
}

func TestFileSystem_SetRoots_RegistersSubtree(t *testing.T) {
	t.Parallel()

	tt := createTestTree(t, nil)

	seen := map[uint64]bool{}
	tt.fs.Walk(func(n *Node, _ int) bool {
		require.NotZero(t, n.NodeID())
		assert.False(t, seen[n.NodeID()], "NodeIDs must be unique")
		seen[n.NodeID()] = true
		got, ok := tt.fs.Lookup(n.NodeID())
		require.True(t, ok)
		assert.Same(t, n, got)
		return true
	})
	assert.Len(t, seen, 5)
}

func TestFileSystem_SetRoots_TearsDownPrevious(t *testing.T) {
	t.Parallel()

	tt := createTestTree(t, nil)
	oldID := tt.x.NodeID()

	tt.fs.SetRoots(NewDemoTree())

	_, ok := tt.fs.Lookup(oldID)
	assert.False(t, ok)
	assert.Zero(t, tt.x.NodeID())
	assert.Equal(t, 1+len(DemoDrives)*5, tt.fs.Len())
}

func TestFileSystem_AddRoot(t *testing.T) {
	t.Parallel()

	tt := createTestTree(t, nil)

	err := tt.fs.AddRoot(NewNode("My Computer", SystemKind, SystemLabel))
	require.ErrorIs(t, err, ErrDuplicateName)
	assert.Len(t, tt.fs.Roots(), 1)

	require.NoError(t, tt.fs.AddRoot(NewNode("Network", SystemKind, SystemLabel)))
	assert.Len(t, tt.fs.Roots(), 2)
}

func TestFileSystem_Walk_PreOrder(t *testing.T) {
	t.Parallel()

	tt := createTestTree(t, nil)

	var order []string
	var depths []int
	tt.fs.Walk(func(n *Node, depth int) bool {
		order = append(order, n.Name())
		depths = append(depths, depth)
		return true
	})

	assert.Equal(t, []string{"My Computer", "C:", "A", "x.txt", "B"}, order)
	assert.Equal(t, []int{0, 1, 2, 3, 2}, depths)

	t.Run("Stop", func(t *testing.T) {
		var visited []string
		tt.fs.Walk(func(n *Node, _ int) bool {
			visited = append(visited, n.Name())
			return n.Name() != "A"
		})
		assert.Equal(t, []string{"My Computer", "C:", "A"}, visited)
	})
}

func TestFileSystem_Resolve(t *testing.T) {
	t.Parallel()

	tt := createTestTree(t, nil)

	tests := []struct {
		name    string
		path    string
		want    *Node
		wantErr error
	}{
		{"root", "My Computer", tt.sys, nil},
		{"slash path", "My Computer/C:/A/x.txt", tt.x, nil},
		{"display path", "My Computer / C: / A", tt.a, nil},
		{"leading slash", "/My Computer/C:", tt.drive, nil},
		{"missing", "My Computer/C:/Z", nil, ErrNotFound},
		{"empty", "", nil, ErrNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tt.fs.Resolve(tc.path)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Same(t, tc.want, got)
		})
	}
}

func TestFileSystem_DisplayPath(t *testing.T) {
	t.Parallel()

	tt := createTestTree(t, nil)

	assert.Equal(t, "My Computer / C: / A / x.txt", tt.fs.DisplayPath(tt.x))
	assert.Equal(t, "My Computer/C:/A/x.txt", tt.fs.Path(tt.x))
	assert.Equal(t, "My Computer", tt.fs.DisplayPath(tt.sys))
}

func TestFileSystem_CreateFolder(t *testing.T) {
	t.Parallel()

	t.Run("IntoFolder", func(t *testing.T) {
		t.Parallel()
		tt := createTestTree(t, nil)

		n, err := tt.fs.CreateFolder(tt.a, "sub")

		require.NoError(t, err)
		assert.Same(t, tt.a, n.Parent())
		assert.Equal(t, FolderKind, n.Kind())
		assert.Equal(t, FolderLabel, n.Label())
		assert.Equal(t, IconFolder, n.IconKey())
		assert.NotZero(t, n.NodeID())
		assert.Equal(t, []string{"x.txt", "sub"}, childNames(tt.a), "new nodes are appended last")
	})

	t.Run("FileRetargetsToParent", func(t *testing.T) {
		t.Parallel()
		tt := createTestTree(t, nil)

		n, err := tt.fs.CreateFolder(tt.x, "sibling")

		require.NoError(t, err)
		assert.Same(t, tt.a, n.Parent())
	})

	t.Run("DriveRetargetsToSystem", func(t *testing.T) {
		t.Parallel()
		tt := createTestTree(t, nil)

		n, err := tt.fs.CreateFolder(tt.drive, "top")

		require.NoError(t, err)
		assert.Same(t, tt.sys, n.Parent())
	})

	t.Run("RootSystemRejected", func(t *testing.T) {
		t.Parallel()
		tt := createTestTree(t, nil)

		_, err := tt.fs.CreateFolder(tt.sys, "nope")

		require.ErrorIs(t, err, ErrInvalidTarget)
		assert.Equal(t, 5, tt.fs.Len())
	})

	t.Run("NilParent", func(t *testing.T) {
		t.Parallel()
		tt := createTestTree(t, nil)

		_, err := tt.fs.CreateFolder(nil, "nope")
		require.ErrorIs(t, err, ErrInvalidTarget)
	})

	t.Run("Duplicate", func(t *testing.T) {
		t.Parallel()
		tt := createTestTree(t, nil)

		_, err := tt.fs.CreateFolder(tt.a, "x.txt")

		require.ErrorIs(t, err, ErrDuplicateName)
		assert.Equal(t, []string{"x.txt"}, childNames(tt.a))
	})

	t.Run("BlankName", func(t *testing.T) {
		t.Parallel()
		tt := createTestTree(t, nil)

		_, err := tt.fs.CreateFolder(tt.a, "  ")
		require.ErrorIs(t, err, ErrInvalidTarget)
		assert.Equal(t, 1, tt.a.ChildCount())
	})
}

func TestFileSystem_CreateFile(t *testing.T) {
	t.Parallel()

	t.Run("DuplicateRejected", func(t *testing.T) {
		t.Parallel()
		m := &mocks.MockMaterializer{}
		tt := createTestTree(t, m)

		_, err := tt.fs.CreateFile(tt.a, "x.txt")

		require.ErrorIs(t, err, ErrDuplicateName)
		assert.Equal(t, []string{"x.txt"}, childNames(tt.a))
		m.AssertNotCalled(t, "Materialize", mock.Anything)
	})

	t.Run("TypedAndMaterialized", func(t *testing.T) {
		t.Parallel()
		m := &mocks.MockMaterializer{}
		m.On("Materialize", "report.pdf").Return("/backing/1234/report.pdf", nil).Once()
		tt := createTestTree(t, m)

		n, err := tt.fs.CreateFile(tt.a, "report.pdf")

		require.NoError(t, err)
		assert.Equal(t, "pdf document", n.Label())
		assert.Equal(t, IconPdf, n.IconKey())
		assert.Equal(t, "/backing/1234/report.pdf", n.RealPath())
		assert.Same(t, tt.a, n.Parent())
		m.AssertExpectations(t)
	})

	t.Run("MaterializeFailureIsNonFatal", func(t *testing.T) {
		t.Parallel()
		m := &mocks.MockMaterializer{}
		m.On("Materialize", "a.txt").Return("", errors.New("disk full"))
		tt := createTestTree(t, m)

		n, err := tt.fs.CreateFile(tt.b, "a.txt")

		require.NoError(t, err)
		assert.Empty(t, n.RealPath())
		assert.Same(t, tt.b, n.Parent())
	})

	t.Run("MaterializeDisabled", func(t *testing.T) {
		t.Parallel()
		m := &mocks.MockMaterializer{}
		cfg := createTestConfig()
		cfg.MaterializeFiles = false
		fs := NewFS(cfg, m)
		fs.SetRoots(NewDemoTree())
		folder, err := fs.Resolve("My Computer/C:/Folder1")
		require.NoError(t, err)

		n, err := fs.CreateFile(folder, "b.zip")

		require.NoError(t, err)
		assert.Empty(t, n.RealPath())
		m.AssertNotCalled(t, "Materialize", mock.Anything)
	})

	t.Run("UnknownExtension", func(t *testing.T) {
		t.Parallel()
		tt := createTestTree(t, nil)

		n, err := tt.fs.CreateFile(tt.x, "notes.md")

		require.NoError(t, err)
		assert.Same(t, tt.a, n.Parent(), "file target retargets to parent folder")
		assert.Equal(t, UnknownFileType.Label, n.Label())
		assert.Equal(t, IconUnknown, n.IconKey())
	})
}

func TestFileSystem_Delete(t *testing.T) {
	t.Parallel()

	t.Run("RootRejected", func(t *testing.T) {
		t.Parallel()
		tt := createTestTree(t, nil)

		err := tt.fs.Delete(tt.sys)

		require.ErrorIs(t, err, ErrNotDeletable)
		assert.Len(t, tt.fs.Roots(), 1)
		assert.Equal(t, 5, tt.fs.Len())
	})

	t.Run("Subtree", func(t *testing.T) {
		t.Parallel()
		tt := createTestTree(t, nil)
		xID := tt.x.NodeID()

		require.NoError(t, tt.fs.Delete(tt.a))

		assert.Equal(t, []string{"B"}, childNames(tt.drive))
		_, ok := tt.fs.Lookup(xID)
		assert.False(t, ok, "descendants must leave the registry")
		assert.Equal(t, 3, tt.fs.Len())
	})
}

func TestFileSystem_Rename(t *testing.T) {
	t.Parallel()

	t.Run("SameNameIsNoOp", func(t *testing.T) {
		t.Parallel()
		tt := createTestTree(t, nil)

		err := tt.fs.Rename(tt.a, "A")

		require.ErrorIs(t, err, ErrNoOp)
		assert.Equal(t, "A", tt.a.Name())
	})

	t.Run("BlankIsNoOp", func(t *testing.T) {
		t.Parallel()
		tt := createTestTree(t, nil)

		require.ErrorIs(t, tt.fs.Rename(tt.a, " \t"), ErrNoOp)
		assert.Equal(t, "A", tt.a.Name())
	})

	t.Run("DuplicateSibling", func(t *testing.T) {
		t.Parallel()
		tt := createTestTree(t, nil)

		require.ErrorIs(t, tt.fs.Rename(tt.a, "B"), ErrDuplicateName)
		assert.Equal(t, "A", tt.a.Name())
	})

	t.Run("CaseOnlyChangeAllowed", func(t *testing.T) {
		t.Parallel()
		tt := createTestTree(t, nil)

		require.NoError(t, tt.fs.Rename(tt.a, "a"))
		assert.Equal(t, "a", tt.a.Name())
	})

	t.Run("RootsAreSiblings", func(t *testing.T) {
		t.Parallel()
		tt := createTestTree(t, nil)
		other := NewNode("Network", SystemKind, SystemLabel)
		require.NoError(t, tt.fs.AddRoot(other))

		require.ErrorIs(t, tt.fs.Rename(other, "My Computer"), ErrDuplicateName)
	})

	t.Run("PreservesIdentity", func(t *testing.T) {
		t.Parallel()
		tt := createTestTree(t, nil)
		id := tt.x.NodeID()

		require.NoError(t, tt.fs.Rename(tt.x, "y.pdf"))

		got, ok := tt.fs.Lookup(id)
		require.True(t, ok)
		assert.Same(t, tt.x, got)
		assert.Equal(t, "y.pdf", got.Name())
		assert.Equal(t, "txt file", got.Label(), "rename does not retype")
	})
}

func TestFileSystem_DeepClone(t *testing.T) {
	t.Parallel()

	tt := createTestTree(t, nil)
	tt.x.realPath = "/backing/x.txt"

	clone := tt.fs.DeepClone(tt.drive)

	assert.Nil(t, clone.Parent())
	assert.Zero(t, clone.NodeID())
	assert.Equal(t, "C:", clone.Name())
	assert.Equal(t, DriveKind, clone.Kind())
	assert.Equal(t, IconDisk, clone.IconKey())
	require.Equal(t, []string{"A", "B"}, childNames(clone))

	ca := clone.Children()[0]
	assert.NotSame(t, tt.a, ca)
	assert.Same(t, clone, ca.Parent())
	cx := ca.Children()[0]
	assert.Equal(t, "/backing/x.txt", cx.RealPath())
	assert.Equal(t, "txt file", cx.Label())

	// clone is independent of the source
	cx.name = "changed"
	assert.Equal(t, "x.txt", tt.x.Name())
}

func TestFileSystem_Paste(t *testing.T) {
	t.Parallel()

	t.Run("NonFolderTarget", func(t *testing.T) {
		t.Parallel()
		tt := createTestTree(t, nil)

		for _, target := range []*Node{tt.x, tt.drive, tt.sys, nil} {
			err := tt.fs.Paste(target, tt.fs.DeepClone(tt.b))
			require.ErrorIs(t, err, ErrInvalidTarget)
		}
		assert.Equal(t, 5, tt.fs.Len())
	})

	t.Run("Duplicate", func(t *testing.T) {
		t.Parallel()
		tt := createTestTree(t, nil)

		err := tt.fs.Paste(tt.a, tt.fs.DeepClone(tt.x))

		require.ErrorIs(t, err, ErrDuplicateName)
		assert.Equal(t, []string{"x.txt"}, childNames(tt.a))
	})

	t.Run("AppendsAndRegisters", func(t *testing.T) {
		t.Parallel()
		tt := createTestTree(t, nil)
		clone := tt.fs.DeepClone(tt.a)

		require.NoError(t, tt.fs.Paste(tt.b, clone))

		assert.Equal(t, []string{"A"}, childNames(tt.b))
		assert.Same(t, tt.b, clone.Parent())
		assert.NotZero(t, clone.NodeID())
		assert.NotEqual(t, tt.a.NodeID(), clone.NodeID())
		assert.NotZero(t, clone.Children()[0].NodeID())
		assert.Equal(t, 7, tt.fs.Len())
		assert.Equal(t, []string{"A", "B"}, childNames(tt.drive), "source stays in place")
	})
}

func TestFileSystem_Move(t *testing.T) {
	t.Parallel()

	t.Run("IntoSibling", func(t *testing.T) {
		t.Parallel()
		tt := createTestTree(t, nil)
		id := tt.x.NodeID()

		require.NoError(t, tt.fs.Move(tt.b, tt.x))

		assert.Empty(t, childNames(tt.a))
		assert.Equal(t, []string{"x.txt"}, childNames(tt.b))
		assert.Equal(t, id, tt.x.NodeID())
		assert.Equal(t, 5, tt.fs.Len())
	})

	t.Run("IntoOwnSubtree", func(t *testing.T) {
		t.Parallel()
		tt := createTestTree(t, nil)
		sub, err := tt.fs.CreateFolder(tt.a, "sub")
		require.NoError(t, err)

		require.ErrorIs(t, tt.fs.Move(sub, tt.a), ErrInvalidTarget)
		require.ErrorIs(t, tt.fs.Move(tt.a, tt.a), ErrInvalidTarget)
		assert.Same(t, tt.drive, tt.a.Parent())
	})

	t.Run("SameParent", func(t *testing.T) {
		t.Parallel()
		tt := createTestTree(t, nil)

		require.ErrorIs(t, tt.fs.Move(tt.a, tt.x), ErrNoOp)
	})

	t.Run("Duplicate", func(t *testing.T) {
		t.Parallel()
		tt := createTestTree(t, nil)
		_, err := tt.fs.CreateFile(tt.b, "x.txt")
		require.NoError(t, err)

		require.ErrorIs(t, tt.fs.Move(tt.b, tt.x), ErrDuplicateName)
		assert.Same(t, tt.a, tt.x.Parent())
	})
}

func TestFileSystem_Open(t *testing.T) {
	t.Parallel()

	t.Run("Container", func(t *testing.T) {
		t.Parallel()
		tt := createTestTree(t, nil)
		opener := &mocks.MockOpener{}

		require.ErrorIs(t, tt.fs.Open(tt.a, opener), ErrNotOpenable)
		require.ErrorIs(t, tt.fs.Open(tt.drive, opener), ErrNotOpenable)
		opener.AssertNotCalled(t, "Open", mock.Anything)
	})

	t.Run("NoBackingPath", func(t *testing.T) {
		t.Parallel()
		tt := createTestTree(t, nil)
		opener := &mocks.MockOpener{}

		require.ErrorIs(t, tt.fs.Open(tt.x, opener), ErrNoBackingPath)
		opener.AssertNotCalled(t, "Open", mock.Anything)
	})

	t.Run("HandlerResult", func(t *testing.T) {
		t.Parallel()
		m := &mocks.MockMaterializer{}
		m.On("Materialize", mock.Anything).Return(func(name string) string { return "/backing/" + name }, nil)
		tt := createTestTree(t, m)
		ok, err := tt.fs.CreateFile(tt.a, "ok.txt")
		require.NoError(t, err)
		bad, err := tt.fs.CreateFile(tt.a, "bad.txt")
		require.NoError(t, err)

		opener := &mocks.MockOpener{}
		opener.On("Open", "/backing/ok.txt").Return(true)
		opener.On("Open", "/backing/bad.txt").Return(false)

		require.NoError(t, tt.fs.Open(ok, opener))
		require.ErrorIs(t, tt.fs.Open(bad, opener), ErrOpenFailed)
		opener.AssertExpectations(t)
	})
}

func TestDefaultNames(t *testing.T) {
	t.Parallel()

	ts := time.Unix(1700000000, 0)

	assert.Equal(t, "New Folder1700000000", DefaultFolderName(ts))
	assert.Equal(t, "New File1700000000.txt", DefaultFileName(ts, "txt"))
	assert.Equal(t, "New File1700000000.pdf", DefaultFileName(ts, ".pdf"))
}
