package protocol

// ProtocolResponse is the base of every server reply to a Command,
// carrying the correlating cmd_id and a closed response code.
type ProtocolResponse struct {
	base
}

func NewProtocolResponse(cmdID int, code ResponseCode) *ProtocolResponse {
	r := &ProtocolResponse{base: newBase(ItemIDResponse, "response", "")}
	r.Attrs().Set("cmd_id", IntAttr(cmdID))
	r.Attrs().Set("response_code", StringAttr(code.String()))
	return r
}

func (r *ProtocolResponse) CmdID() int { return r.Attrs().Int("cmd_id") }
func (r *ProtocolResponse) ResponseCode() ResponseCode {
	return parseResponseCode(r.Attrs().String("response_code"))
}

func (r *ProtocolResponse) attrKinds() map[string]AttrKind {
	return map[string]AttrKind{"cmd_id": KindInt}
}

// ResponseDeckList carries a deck directory listing.
type ResponseDeckList struct {
	ProtocolResponse
}

func NewResponseDeckList(cmdID int, code ResponseCode, directory Item) *ResponseDeckList {
	r := &ResponseDeckList{ProtocolResponse: *NewProtocolResponse(cmdID, code)}
	r.id = ItemIDResponseDeckList
	r.itemSubType = "deck_list"
	if directory != nil {
		r.AddChild(directory)
	}
	return r
}

func (r *ResponseDeckList) Directory() Item {
	if len(r.Children()) == 0 {
		return nil
	}
	return r.Children()[0]
}

// ResponseDeckDownload carries a single deck blob.
type ResponseDeckDownload struct {
	ProtocolResponse
}

func NewResponseDeckDownload(cmdID int, code ResponseCode, deck Item) *ResponseDeckDownload {
	r := &ResponseDeckDownload{ProtocolResponse: *NewProtocolResponse(cmdID, code)}
	r.id = ItemIDResponseDeckDownload
	r.itemSubType = "deck_download"
	if deck != nil {
		r.AddChild(deck)
	}
	return r
}

func (r *ResponseDeckDownload) Deck() Item {
	if len(r.Children()) == 0 {
		return nil
	}
	return r.Children()[0]
}

// ResponseDeckUpload confirms a deck upload, echoing the new file id.
type ResponseDeckUpload struct {
	ProtocolResponse
}

func NewResponseDeckUpload(cmdID int, code ResponseCode, fileID, fileName string) *ResponseDeckUpload {
	r := &ResponseDeckUpload{ProtocolResponse: *NewProtocolResponse(cmdID, code)}
	r.id = ItemIDResponseDeckUpload
	r.itemSubType = "deck_upload"
	r.Attrs().Set("file_id", StringAttr(fileID))
	r.Attrs().Set("file_name", StringAttr(fileName))
	return r
}

func (r *ResponseDeckUpload) FileID() string   { return r.Attrs().String("file_id") }
func (r *ResponseDeckUpload) FileName() string { return r.Attrs().String("file_name") }

// ResponseDumpZone carries the server-side contents of one zone, used by
// admin/debug tooling and reconnection state resync.
type ResponseDumpZone struct {
	ProtocolResponse
}

func NewResponseDumpZone(cmdID int, code ResponseCode, zone Item) *ResponseDumpZone {
	r := &ResponseDumpZone{ProtocolResponse: *NewProtocolResponse(cmdID, code)}
	r.id = ItemIDResponseDumpZone
	r.itemSubType = "dump_zone"
	if zone != nil {
		r.AddChild(zone)
	}
	return r
}

func (r *ResponseDumpZone) Zone() Item {
	if len(r.Children()) == 0 {
		return nil
	}
	return r.Children()[0]
}

func init() {
	Register("response", "", func() Item { return NewProtocolResponse(-1, RespOk) })
	Register("response", "deck_list", func() Item { return NewResponseDeckList(-1, RespOk, nil) })
	Register("response", "deck_download", func() Item { return NewResponseDeckDownload(-1, RespOk, nil) })
	Register("response", "deck_upload", func() Item { return NewResponseDeckUpload(-1, RespOk, "", "") })
	Register("response", "dump_zone", func() Item { return NewResponseDumpZone(-1, RespOk, nil) })
}
