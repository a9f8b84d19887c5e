package adapter

import (
	"time"

	"github.com/shopspring/decimal"
)

// The broker carries prices as bare JSON numbers in both directions.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// InsertTimeLayout is the broker's order book timestamp format.
const InsertTimeLayout = "02-Jan-2006 15:04:05"

// MasterOrder is a snapshot record from the master account's order book.
// It mirrors the broker's wire field names and is never persisted.
type MasterOrder struct {
	UniqueOrderID    string          `json:"uniqueorderid"`
	RecordInsertTime string          `json:"recordinserttime"`
	Status           string          `json:"orderstatus"`
	Type             string          `json:"ordertype"`
	Side             string          `json:"buyorsell"`
	SecurityID       int64           `json:"symboltoken"`
	Exchange         string          `json:"exchange"`
	Quantity         int64           `json:"orderqty"`
	Price            decimal.Decimal `json:"price"`
	TriggerPrice     decimal.Decimal `json:"triggerprice"`
	ProductType      string          `json:"producttype"`
	Validity         string          `json:"orderduration"`
}

// InsertedAt parses the record insertion timestamp in the broker's zone.
func (o MasterOrder) InsertedAt(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(InsertTimeLayout, o.RecordInsertTime, loc)
}

// ChildOrderIntent is the placement request forwarded to a child account.
type ChildOrderIntent struct {
	ClientCode        string          `json:"clientcode"`
	Exchange          string          `json:"exchange"`
	SecurityID        int64           `json:"symboltoken"`
	Side              string          `json:"buyorsell"`
	OrderType         string          `json:"ordertype"`
	ProductType       string          `json:"producttype"`
	OrderDuration     string          `json:"orderduration"`
	Price             decimal.Decimal `json:"price"`
	TriggerPrice      decimal.Decimal `json:"triggerprice"`
	QuantityInLot     int64           `json:"quantityinlot"`
	DisclosedQuantity int64           `json:"disclosedquantity"`
	AMOOrder          string          `json:"amoorder"`
	AlgoID            string          `json:"algoid"`
	GoodTillDate      string          `json:"goodtilldate"`
	Tag               string          `json:"tag"`
}
