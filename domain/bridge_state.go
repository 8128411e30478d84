package domain

// BridgeState is the persisted cursor of the custody-bridge listener, one
// record per watched chain and escrow account.
type BridgeState struct {
	ChainId            int32   `bson:"chainId"`
	Market             Address `bson:"market"`
	LastBlockProcessed uint64  `bson:"lastBlockProcessed"`
}

func (s *BridgeState) ToId() *BridgeStateId {
	return &BridgeStateId{
		ChainId: s.ChainId,
		Market:  s.Market,
	}
}

type BridgeStateId struct {
	ChainId int32   `bson:"chainId"`
	Market  Address `bson:"market"`
}
