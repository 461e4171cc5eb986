// Package syncml provides name-only codepages for SyncML envelopes, enough
// to render them as XML.
package syncml

import "github.com/danmuck/wbxml/internal/protocol/wbxml"

// Codepage indices.
const (
	PageSyncML    = 0
	PageMetInf    = 1
	PageSignature = 8
)

var syncMLTags = []string{
	"Add",
	"Alert",
	"Archive",
	"Atomic",
	"Chal",
	"Cmd",
	"CmdID",
	"CmdRef",
	"Copy",
	"Cred",
	"Data",
	"Delete",
	"Exec",
	"Final",
	"Get",
	"Item",
	"Lang",
	"LocName",
	"LocURI",
	"Map",
	"MapItem",
	"Meta",
	"MsgID",
	"MsgRef",
	"NoResp",
	"NoResults",
	"Put",
	"Replace",
	"RespURI",
	"Results",
	"Search",
	"Sequence",
	"SessionID",
	"SftDel",
	"Source",
	"SourceRef",
	"Status",
	"Sync",
	"SyncBody",
	"SyncHdr",
	"SyncML",
	"Target",
	"TargetRef",
	"Reserved",
	"VerDTD",
	"VerProto",
	"NumberOfChanged",
	"MoreData",
	"Field",
	"Filter",
	"Record",
	"FilterType",
	"SourceParent",
	"TargetParent",
	"Move",
	"Correlator",
}

var metInfTags = []string{
	"Anchor",
	"EMI",
	"Format",
	"FreeID",
	"FreeMem",
	"Last",
	"Mark",
	"MaxMsgSize",
	"Mem",
	"MetInf",
	"Next",
	"NextNonce",
	"SharedMem",
	"Size",
	"Type",
	"Version",
	"MaxObjSize",
	"FieldLevel",
}

var signatureTags = []string{
	"CS",
	"HorRecv",
	"HorSend",
	"CertSign",
	"Sign",
	"Start",
	"Stop",
}

// Pages returns a table indexed by SWITCH_PAGE value. Indices without a
// vocabulary get an empty page, so any tag selected there is rejected.
func Pages() []wbxml.Codepage {
	pages := make([]wbxml.Codepage, PageSignature+1)
	for i := range pages {
		pages[i] = &wbxml.BasePage{PageName: "unassigned", First: 5}
	}
	pages[PageSyncML] = &wbxml.BasePage{PageName: "SyncML", First: 5, Names: syncMLTags}
	pages[PageMetInf] = &wbxml.BasePage{PageName: "MetInf", First: 5, Names: metInfTags}
	pages[PageSignature] = &wbxml.BasePage{PageName: "Signature", First: 5, Names: signatureTags}
	return pages
}
