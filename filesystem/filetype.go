package filesystem

import (
	"path"
	"strings"
)

// Kind discriminates containment rules. Only Folder nodes accept children via
// paste and drop; System and Drive nodes may hold children built at load time.
type Kind int

const (
	FileKind Kind = iota
	FolderKind
	DriveKind
	SystemKind
)

func (k Kind) String() string {
	switch k {
	case SystemKind:
		return "system"
	case DriveKind:
		return "drive"
	case FolderKind:
		return "folder"
	default:
		return "file"
	}
}

// IsContainer reports whether nodes of this kind can have children at all
func (k Kind) IsContainer() bool {
	return k != FileKind
}

// Type labels for container kinds
const (
	SystemLabel = "system"
	DriveLabel  = "drive"
	FolderLabel = "folder"
)

// Labels written by earlier versions of the tree document
const (
	legacyDriveLabel  = "驱动器"
	legacyFolderLabel = "文件夹"
)

// KindForLabel derives the node kind from a persisted type label
func KindForLabel(label string) Kind {
	switch label {
	case SystemLabel:
		return SystemKind
	case DriveLabel, legacyDriveLabel:
		return DriveKind
	case FolderLabel, legacyFolderLabel:
		return FolderKind
	default:
		return FileKind
	}
}

// Icon registry keys
const (
	IconComputer = "treeItem_Computer"
	IconDisk     = "treeItem_Disk"
	IconFolder   = "treeItem_Project"
	IconUnknown  = "treeItem_Unknownfile"
	IconTxt      = "treeItem_txt"
	IconGif      = "treeItem_gif"
	IconPdf      = "treeItem_pdf"
	IconPng      = "treeItem_png"
	IconDoc      = "treeItem_doc"
	IconPpt      = "treeItem_ppt"
	IconZip      = "treeItem_zip"
	IconXls      = "treeItem_xls"
)

// FileType is the display label and icon derived from a file name
type FileType struct {
	Label string
	Icon  string
}

// UnknownFileType is used for missing or unrecognized extensions
var UnknownFileType = FileType{Label: "unknown file", Icon: IconUnknown}

var fileTypes = map[string]FileType{
	"txt": {Label: "txt file", Icon: IconTxt},
	"pdf": {Label: "pdf document", Icon: IconPdf},
	"png": {Label: "png file", Icon: IconPng},
	"doc": {Label: "doc document", Icon: IconDoc},
	"gif": {Label: "gif file", Icon: IconGif},
	"ppt": {Label: "ppt document", Icon: IconPpt},
	"xls": {Label: "xls document", Icon: IconXls},
	"zip": {Label: "zip file", Icon: IconZip},
}

// FileTypeFor maps the last extension of name (case-insensitive) to its FileType
func FileTypeFor(name string) FileType {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
	if ft, ok := fileTypes[ext]; ok {
		return ft
	}
	return UnknownFileType
}

// Extensions lists the extensions with a dedicated file type
func Extensions() []string {
	return []string{"txt", "pdf", "png", "doc", "gif", "ppt", "xls", "zip"}
}

// IconRegistry maps symbolic icon keys to icon resources. The tree only stores
// keys; resources are resolved by whatever displays the tree.
type IconRegistry map[string]string

// DefaultIcons returns the built-in registry
func DefaultIcons() IconRegistry {
	return IconRegistry{
		IconComputer: ":/Icon/Image/Computer.png",
		IconDisk:     ":/Icon/Image/Disk.png",
		IconFolder:   ":/Icon/Image/Project.png",
		IconUnknown:  ":/Icon/Image/Unknownfile.png",
		IconTxt:      ":/Icon/Image/txt.png",
		IconGif:      ":/Icon/Image/gif.png",
		IconPdf:      ":/Icon/Image/pdf.png",
		IconPng:      ":/Icon/Image/png.png",
		IconDoc:      ":/Icon/Image/doc.png",
		IconPpt:      ":/Icon/Image/ppt.png",
		IconZip:      ":/Icon/Image/zip.png",
		IconXls:      ":/Icon/Image/xls.png",
	}
}

// Has reports whether key is registered
func (r IconRegistry) Has(key string) bool {
	_, ok := r[key]
	return ok
}
