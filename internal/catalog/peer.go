package catalog

import "github.com/prxssh/slsk/internal/wire"

type FileAttribute struct {
	Tag   FileAttributeTag
	Value uint32
}

// File is the wire representation of one shared file entry: code is
// always 1 on the current protocol revision.
type File struct {
	Code       uint8
	Filename   string
	Size       uint64
	Extension  string
	Attributes []FileAttribute
}

func putFile(e *wire.Encoder, f File) {
	e.PutUint8(f.Code)
	e.PutString(f.Filename)
	e.PutUint64(f.Size)
	e.PutString(f.Extension)
	wire.PutList(e, f.Attributes, func(e *wire.Encoder, a FileAttribute) {
		e.PutUint32(uint32(a.Tag))
		e.PutUint32(a.Value)
	})
}

func getFile(d *wire.Decoder) (File, error) {
	code, err := d.GetUint8()
	if err != nil {
		return File{}, err
	}
	filename, err := d.GetString()
	if err != nil {
		return File{}, err
	}
	size, err := d.GetUint64()
	if err != nil {
		return File{}, err
	}
	ext, err := d.GetString()
	if err != nil {
		return File{}, err
	}
	attrs, err := wire.GetList(d, func(d *wire.Decoder) (FileAttribute, error) {
		tag, err := d.GetUint32()
		if err != nil {
			return FileAttribute{}, err
		}
		val, err := d.GetUint32()
		if err != nil {
			return FileAttribute{}, err
		}
		return FileAttribute{Tag: FileAttributeTag(tag), Value: val}, nil
	})
	if err != nil {
		return File{}, err
	}
	return File{Code: code, Filename: filename, Size: size, Extension: ext, Attributes: attrs}, nil
}

type Directory struct {
	Path  string
	Files []File
}

func putDirectory(e *wire.Encoder, d Directory) {
	e.PutString(d.Path)
	wire.PutList(e, d.Files, putFile)
}

func getDirectory(d *wire.Decoder) (Directory, error) {
	path, err := d.GetString()
	if err != nil {
		return Directory{}, err
	}
	files, err := wire.GetList(d, getFile)
	if err != nil {
		return Directory{}, err
	}
	return Directory{Path: path, Files: files}, nil
}

// SharedFileListResponse answers a peer's request for our shares.
type SharedFileListResponse struct {
	Directories []Directory
}

func (m SharedFileListResponse) Encode() []byte {
	var e wire.Encoder
	wire.PutList(&e, m.Directories, putDirectory)
	return wire.FrameU32Code(CodeSharedFileListResponse, e.Bytes())
}

func DecodeSharedFileListResponse(payload []byte) (SharedFileListResponse, error) {
	d := wire.NewDecoder(payload)
	dirs, err := wire.GetList(d, getDirectory)
	if err != nil {
		return SharedFileListResponse{}, err
	}
	return SharedFileListResponse{Directories: dirs}, nil
}

// FileSearchResponse is what a peer sends back for a FileSearch token
// it can answer.
type FileSearchResponse struct {
	Username      string
	Token         uint32
	Files         []File
	SlotFree      bool
	AvgSpeed      uint32
	QueueLength   uint64
	PrivateFiles  []File
}

func DecodeFileSearchResponse(payload []byte) (FileSearchResponse, error) {
	d := wire.NewDecoder(payload)
	username, err := d.GetString()
	if err != nil {
		return FileSearchResponse{}, err
	}
	token, err := d.GetUint32()
	if err != nil {
		return FileSearchResponse{}, err
	}
	files, err := wire.GetList(d, getFile)
	if err != nil {
		return FileSearchResponse{}, err
	}
	slotFree, err := d.GetBool()
	if err != nil {
		return FileSearchResponse{}, err
	}
	avgSpeed, err := d.GetUint32()
	if err != nil {
		return FileSearchResponse{}, err
	}
	queueLength, err := d.GetUint64()
	if err != nil {
		return FileSearchResponse{}, err
	}
	resp := FileSearchResponse{
		Username:    username,
		Token:       token,
		Files:       files,
		SlotFree:    slotFree,
		AvgSpeed:    avgSpeed,
		QueueLength: queueLength,
	}
	if d.Remaining() > 0 {
		priv, err := wire.GetList(d, getFile)
		if err == nil {
			resp.PrivateFiles = priv
		}
	}
	return resp, nil
}

// TransferRequest opens a file transfer in either direction.
type TransferRequest struct {
	Direction TransferDirection
	Token     uint32
	Filename  string
	Filesize  uint64
	HasSize   bool
}

func DecodeTransferRequest(payload []byte) (TransferRequest, error) {
	d := wire.NewDecoder(payload)
	direction, err := d.GetUint32()
	if err != nil {
		return TransferRequest{}, err
	}
	token, err := d.GetUint32()
	if err != nil {
		return TransferRequest{}, err
	}
	filename, err := d.GetString()
	if err != nil {
		return TransferRequest{}, err
	}
	req := TransferRequest{Direction: TransferDirection(direction), Token: token, Filename: filename}
	if TransferDirection(direction) == UploadToPeer && d.Remaining() >= 8 {
		size, err := d.GetUint64()
		if err != nil {
			return TransferRequest{}, err
		}
		req.Filesize = size
		req.HasSize = true
	}
	return req, nil
}

type TransferResponse struct {
	Token   uint32
	Allowed bool
	Reason  string
}

func (m TransferResponse) Encode() []byte {
	var e wire.Encoder
	e.PutUint32(m.Token)
	e.PutBool(m.Allowed)
	if !m.Allowed {
		e.PutString(m.Reason)
	}
	return wire.FrameU32Code(CodeTransferResponse, e.Bytes())
}

func EncodeQueueUpload(filename string) []byte {
	var e wire.Encoder
	e.PutString(filename)
	return wire.FrameU32Code(CodeQueueUpload, e.Bytes())
}
