// Package content implements the file/folder object codepage: the mapping
// between WBXML events and File/Folder values, in both directions.
package content

// PageName identifies the content codepage in logs and traces.
const PageName = "content"

// Tag IDs. The table starts at 5; IDs below it are global tokens.
const (
	TagA uint8 = iota + 5
	TagAccessed
	TagAttributes
	TagBody
	TagCreated
	TagCTType
	TagD
	TagExt
	TagFile
	TagFolder
	TagH
	TagModified
	TagName
	TagR
	TagRole
	TagS
	TagSize
	TagW
	TagX
	TagXNam
	TagXVal
)

var tagNames = []string{
	"A",
	"Accessed",
	"Attributes",
	"Body",
	"Created",
	"CTType",
	"D",
	"Ext",
	"File",
	"Folder",
	"H",
	"Modified",
	"Name",
	"R",
	"Role",
	"S",
	"Size",
	"W",
	"X",
	"XNam",
	"XVal",
}

// TagNames returns a copy of the tag name table, indexed by tag-TagA.
func TagNames() []string {
	out := make([]string, len(tagNames))
	copy(out, tagNames)
	return out
}

func isAttributeFlag(tag uint8) bool {
	switch tag {
	case TagA, TagD, TagH, TagR, TagS, TagW, TagX:
		return true
	}
	return false
}
