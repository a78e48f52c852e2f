package domain

import "fmt"

// DisplayKind is the viewer-relative presentation of a transaction.
type DisplayKind string

const (
	DisplaySent             DisplayKind = "SENT"
	DisplayReceived         DisplayKind = "RECEIVED"
	DisplayRequestSent      DisplayKind = "REQUEST_SENT"      // viewer asked to be paid, awaiting answer
	DisplayRequestReceived  DisplayKind = "REQUEST_RECEIVED"  // viewer was asked to pay, awaiting answer
	DisplayRequestPaid      DisplayKind = "REQUEST_PAID"      // viewer paid a request
	DisplayRequestFulfilled DisplayKind = "REQUEST_FULFILLED" // viewer's request was paid
	DisplayRequestRejected  DisplayKind = "REQUEST_REJECTED"  // viewer's request was turned down
	DisplayRequestDeclined  DisplayKind = "REQUEST_DECLINED"  // viewer turned a request down
	DisplayFailedOutgoing   DisplayKind = "FAILED_OUTGOING"
	DisplayFailedIncoming   DisplayKind = "FAILED_INCOMING"
)

// Sign of the balance effect for the viewer.
type Sign string

const (
	SignDebit  Sign = "-"
	SignCredit Sign = "+"
	SignNone   Sign = ""
)

// Display describes how a transaction reads for one of its parties.
type Display struct {
	Kind           DisplayKind `json:"kind"`
	Sign           Sign        `json:"sign"`
	ViewerIsSender bool        `json:"viewer_is_sender"`
	CanRespond     bool        `json:"can_respond"`
}

// ClassifyDisplay maps (type, status, viewer role) onto the closed set of
// display variants. Combinations the engine never produces are an error.
func ClassifyDisplay(typ TransactionType, status TransactionStatus, viewerIsSender bool) (Display, error) {
	pick := func(asSender, asReceiver DisplayKind, senderSign, receiverSign Sign) Display {
		if viewerIsSender {
			return Display{Kind: asSender, Sign: senderSign, ViewerIsSender: true}
		}
		return Display{Kind: asReceiver, Sign: receiverSign}
	}

	switch typ {
	case TransactionTypeSend:
		switch status {
		case TransactionStatusCompleted:
			return pick(DisplaySent, DisplayReceived, SignDebit, SignCredit), nil
		case TransactionStatusFailed:
			return pick(DisplayFailedOutgoing, DisplayFailedIncoming, SignNone, SignNone), nil
		case TransactionStatusPending, TransactionStatusRejected:
			return Display{}, fmt.Errorf("send transaction cannot be %s", status)
		}
	case TransactionTypeRequest:
		switch status {
		case TransactionStatusPending:
			d := pick(DisplayRequestReceived, DisplayRequestSent, SignNone, SignNone)
			d.CanRespond = viewerIsSender
			return d, nil
		case TransactionStatusCompleted:
			return pick(DisplayRequestPaid, DisplayRequestFulfilled, SignDebit, SignCredit), nil
		case TransactionStatusRejected:
			return pick(DisplayRequestDeclined, DisplayRequestRejected, SignNone, SignNone), nil
		case TransactionStatusFailed:
			return pick(DisplayFailedOutgoing, DisplayFailedIncoming, SignNone, SignNone), nil
		}
	}
	return Display{}, fmt.Errorf("unknown transaction variant %s/%s", typ, status)
}
