package replicate

import (
	"context"
	"strings"

	"main/internal/adapter"
	"main/internal/adapter/enum"
	"main/pkg/exception"

	"github.com/yanun0323/logs"
)

const (
	statusConfirm = "CONFIRM"
	statusTraded  = "TRADED"
	statusCancel  = "CANCEL"

	typeMarket = "MARKET"

	amoYes = "Y"
	amoNo  = "N"
)

// processOrder classifies one master order and replicates it to the
// setup's children. Every precondition failure skips this order only;
// sibling orders are never affected.
func (e *Engine) processOrder(ctx context.Context, setup adapter.Setup, st *setupState, order adapter.MasterOrder) adapter.OrderOutcome {
	cfg := e.config()
	outcome := adapter.OrderOutcome{MasterOrderID: order.UniqueOrderID}

	if order.UniqueOrderID == "" || order.UniqueOrderID == "0" ||
		order.RecordInsertTime == "" || order.RecordInsertTime == "0" {
		logs.Warnf("setup %s: skip malformed master order %+v", setup.Name, order)
		outcome.Skip = enum.SkipReasonMalformed
		return outcome
	}

	insertedAt, err := order.InsertedAt(cfg.Location)
	if err != nil {
		logs.Warnf("setup %s order %s: invalid insert time %q, err: %+v",
			setup.Name, order.UniqueOrderID, order.RecordInsertTime, err)
		outcome.Skip = enum.SkipReasonMalformed
		return outcome
	}

	// Events older than the freshness window are ignored forever; the
	// next cycle's re-fetch is the only retry mechanism there is.
	if e.now().Sub(insertedAt) > cfg.FreshnessWindow {
		outcome.Skip = enum.SkipReasonStale
		return outcome
	}

	amoFlag := amoNo
	sec := insertedAt.Hour()*3600 + insertedAt.Minute()*60 + insertedAt.Second()
	if sec < cfg.SessionOpenSec || sec > cfg.SessionCloseSec {
		amoFlag = amoYes
	}

	status := strings.ToUpper(order.Status)
	orderType := NormalizeOrderType(order.Type)

	switch {
	case orderType == typeMarket || status == statusConfirm || status == statusTraded:
		if st.hasPlaced(order.UniqueOrderID) {
			outcome.Skip = enum.SkipReasonDuplicate
			return outcome
		}
		outcome.Action = enum.ReplicationActionPlace
		outcome.Children = e.placeChildren(ctx, cfg, setup, st, order, orderType, amoFlag)
		// A single pass is made per order: the id is marked placed even
		// when individual children failed.
		st.markPlaced(order.UniqueOrderID)

	case status == statusCancel:
		if st.hasCancelled(order.UniqueOrderID) {
			outcome.Skip = enum.SkipReasonDuplicate
			return outcome
		}
		outcome.Action = enum.ReplicationActionCancel
		mapping := st.childOrdersFor(order.UniqueOrderID)
		if len(mapping) == 0 {
			// Placement failed everywhere or predates this process;
			// nothing to propagate but the event is still done.
			logs.Infof("setup %s order %s: cancel with no recorded child orders",
				setup.Name, order.UniqueOrderID)
			st.markCancelled(order.UniqueOrderID)
			return outcome
		}
		outcome.Children = e.cancelChildren(ctx, cfg, setup, mapping)
		st.markCancelled(order.UniqueOrderID)

	default:
		// Pending orders may confirm or cancel later; leave them for a
		// future cycle to reclassify.
		outcome.Skip = enum.SkipReasonNoAction
	}
	return outcome
}

func (e *Engine) placeChildren(ctx context.Context, cfg Config, setup adapter.Setup, st *setupState, order adapter.MasterOrder, orderType, amoFlag string) []adapter.ChildResult {
	lot := int64(1)
	if e.lots != nil {
		if v, ok := e.lots.MinLotSize(ctx, order.SecurityID); ok {
			lot = v
		}
	}

	results := make([]adapter.ChildResult, 0, len(setup.Children))
	for _, childID := range setup.Children {
		result := adapter.ChildResult{ChildUserID: childID}

		sess, ok := e.sessions.ByUserID(childID)
		if !ok {
			result.Err = exception.ErrSessionNotFound
			e.logChild(childID, "no session found for child, master order %s not copied", order.UniqueOrderID)
			results = append(results, result)
			continue
		}
		result.ChildName = sess.Name()

		intent := adapter.ChildOrderIntent{
			ClientCode:    childID,
			Exchange:      defaultString(order.Exchange, "NSE"),
			SecurityID:    order.SecurityID,
			Side:          strings.ToUpper(order.Side),
			OrderType:     orderType,
			ProductType:   defaultString(order.ProductType, "CNC"),
			OrderDuration: defaultString(order.Validity, "DAY"),
			Price:         order.Price,
			TriggerPrice:  order.TriggerPrice,
			QuantityInLot: SizeChildOrder(order.Quantity, setup.Multiplier(childID), lot),
			AMOOrder:      amoFlag,
			Tag:           setup.Name,
		}

		callCtx, cancel := context.WithTimeout(ctx, cfg.BrokerTimeout)
		childOrderID, err := sess.PlaceOrder(callCtx, intent)
		cancel()
		if err != nil {
			result.Err = err
			e.logChild(sess.Name(), "copy of master order %s failed, err: %+v", order.UniqueOrderID, err)
		} else {
			result.ChildOrderID = childOrderID
			st.recordChildOrder(order.UniqueOrderID, childID, childOrderID)
		}
		results = append(results, result)
	}
	return results
}

func (e *Engine) cancelChildren(ctx context.Context, cfg Config, setup adapter.Setup, mapping map[string]string) []adapter.ChildResult {
	results := make([]adapter.ChildResult, 0, len(mapping))
	for childID, childOrderID := range mapping {
		result := adapter.ChildResult{ChildUserID: childID, ChildOrderID: childOrderID}

		sess, ok := e.sessions.ByUserID(childID)
		if !ok {
			result.Err = exception.ErrSessionNotFound
			e.logChild(childID, "no session found for child, order %s not cancelled", childOrderID)
			results = append(results, result)
			continue
		}
		result.ChildName = sess.Name()

		callCtx, cancel := context.WithTimeout(ctx, cfg.BrokerTimeout)
		_, err := sess.CancelOrder(callCtx, childOrderID)
		cancel()
		if err != nil {
			result.Err = err
			e.logChild(sess.Name(), "cancel of order %s failed, err: %+v", childOrderID, err)
		}
		results = append(results, result)
	}
	return results
}

func (e *Engine) logChild(child, format string, args ...any) {
	if e.childLog == nil {
		return
	}
	e.childLog.Log(child, format, args...)
}

func defaultString(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
