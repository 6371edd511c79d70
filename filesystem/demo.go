package filesystem

// Demo tree names
const (
	DemoSystemName = "My Computer"
	DemoFileName   = "file.txt"
)

// DemoDrives are the drive names installed under the demo system node
var DemoDrives = []string{"C:", "D:", "E:"}

// NewDemoTree builds the built-in tree used when no document can be loaded:
//
//	My Computer
//	├── C:
//	│   ├── Folder1
//	│   │   └── file.txt
//	│   └── Folder2
//	│       └── file.txt
//	├── D: ...
//	└── E: ...
//
// Demo files have no backing path.
func NewDemoTree() []*Node {
	sys := NewNode(DemoSystemName, SystemKind, SystemLabel, WithIcon(IconComputer))
	for _, d := range DemoDrives {
		drive := NewNode(d, DriveKind, DriveLabel, WithIcon(IconDisk))
		for _, f := range []string{"Folder1", "Folder2"} {
			folder := NewFolder(f)
			folder.AddChild(NewFile(DemoFileName))
			drive.AddChild(folder)
		}
		sys.AddChild(drive)
	}
	return []*Node{sys}
}
