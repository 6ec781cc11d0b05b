package catalog

import "github.com/prxssh/slsk/internal/wire"

// The distributed family carries parent-selection and search-relay
// traffic. Decoders for these messages exist here, but nothing calls
// them and no event in internal/events carries them; parent election
// is out of scope.

type DistributedSearchRequest struct {
	Unknown  uint32
	Username string
	Token    uint32
	Query    string
}

func DecodeDistributedSearchRequest(payload []byte) (DistributedSearchRequest, error) {
	d := wire.NewDecoder(payload)
	unknown, err := d.GetUint32()
	if err != nil {
		return DistributedSearchRequest{}, err
	}
	username, err := d.GetString()
	if err != nil {
		return DistributedSearchRequest{}, err
	}
	token, err := d.GetUint32()
	if err != nil {
		return DistributedSearchRequest{}, err
	}
	query, err := d.GetString()
	if err != nil {
		return DistributedSearchRequest{}, err
	}
	return DistributedSearchRequest{Unknown: unknown, Username: username, Token: token, Query: query}, nil
}

type DistributedBranchLevel struct {
	Level uint32
}

func DecodeDistributedBranchLevel(payload []byte) (DistributedBranchLevel, error) {
	d := wire.NewDecoder(payload)
	level, err := d.GetUint32()
	if err != nil {
		return DistributedBranchLevel{}, err
	}
	return DistributedBranchLevel{Level: level}, nil
}

type DistributedBranchRoot struct {
	Root string
}

func DecodeDistributedBranchRoot(payload []byte) (DistributedBranchRoot, error) {
	d := wire.NewDecoder(payload)
	root, err := d.GetString()
	if err != nil {
		return DistributedBranchRoot{}, err
	}
	return DistributedBranchRoot{Root: root}, nil
}
