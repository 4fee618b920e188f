package http

import (
	"encoding/json"

	"github.com/vishnuvardhan833199/chattify/internal/proto"
	"github.com/vishnuvardhan833199/chattify/internal/relay"
	"github.com/vishnuvardhan833199/chattify/internal/store"
)

// inboundToSignal maps a wire envelope to a relay signal. A nil signal with
// a nil error means the message was understood but carries nothing to do
// (missing target); a proto.Error is returned for malformed envelopes.
func inboundToSignal(inbound proto.Inbound) (*relay.Signal, *proto.Error, error) {
	switch inbound.Type {
	case proto.InboundTypeTypingStart, proto.InboundTypeTypingStop:
		var data proto.TypingData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, nil, err
		}
		kind := relay.SignalTypingStart
		if inbound.Type == proto.InboundTypeTypingStop {
			kind = relay.SignalTypingStop
		}
		return &relay.Signal{Kind: kind, To: data.To}, nil, nil

	case proto.InboundTypeDelivered, proto.InboundTypeSeen:
		var data proto.ReceiptData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, nil, err
		}
		kind := relay.SignalDelivered
		if inbound.Type == proto.InboundTypeSeen {
			kind = relay.SignalSeen
		}
		return &relay.Signal{Kind: kind, To: data.To, MessageID: data.MessageID}, nil, nil

	case proto.InboundTypeCallOffer:
		var data proto.CallOfferData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, nil, err
		}
		return &relay.Signal{
			Kind: relay.SignalCallOffer,
			To:   data.To,
			Call: &relay.CallPayload{Offer: data.Offer, MediaType: data.MediaType},
		}, nil, nil

	case proto.InboundTypeCallAnswer:
		var data proto.CallAnswerData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, nil, err
		}
		return &relay.Signal{
			Kind: relay.SignalCallAnswer,
			To:   data.To,
			Call: &relay.CallPayload{Answer: data.Answer},
		}, nil, nil

	case proto.InboundTypeCallCandidate:
		var data proto.CallCandidateData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, nil, err
		}
		return &relay.Signal{
			Kind: relay.SignalCallCandidate,
			To:   data.To,
			Call: &relay.CallPayload{Candidate: data.Candidate},
		}, nil, nil

	case proto.InboundTypeCallEnd:
		var data proto.CallEndData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, nil, err
		}
		return &relay.Signal{
			Kind: relay.SignalCallEnd,
			To:   data.To,
			Call: &relay.CallPayload{Reason: data.Reason},
		}, nil, nil

	case proto.InboundTypeCallToggle:
		var data proto.CallToggleData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, nil, err
		}
		return &relay.Signal{
			Kind: relay.SignalCallToggle,
			To:   data.To,
			Call: &relay.CallPayload{Track: data.Kind, Enabled: data.Enabled},
		}, nil, nil

	default:
		return nil, &proto.Error{Code: "invalid_message", Msg: "unknown message type"}, nil
	}
}

// outboundFromEvent maps a relay event to its wire envelope.
func outboundFromEvent(event *relay.Event) proto.Outbound {
	switch event.Kind {
	case relay.EventOnlineUsers:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventOnlineUsers,
			Data:  event.Users,
		}
	case relay.EventTyping:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventTyping,
			Data:  proto.TypingEvent{From: event.From},
		}
	case relay.EventStopTyping:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventStopTyping,
			Data:  proto.TypingEvent{From: event.From},
		}
	case relay.EventMessageDelivered:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventMessageDelivered,
			Data:  proto.ReceiptEvent{MessageID: event.MessageID, From: event.From},
		}
	case relay.EventMessageSeen:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventMessageSeen,
			Data:  proto.ReceiptEvent{MessageID: event.MessageID, From: event.From},
		}
	case relay.EventCallIncoming:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventCallIncoming,
			Data: proto.CallIncomingEvent{
				From:      event.From,
				Offer:     event.Call.Offer,
				MediaType: event.Call.MediaType,
			},
		}
	case relay.EventCallAnswer:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventCallAnswer,
			Data:  proto.CallAnswerEvent{From: event.From, Answer: event.Call.Answer},
		}
	case relay.EventCallCandidate:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventCallCandidate,
			Data:  proto.CallCandidateEvent{From: event.From, Candidate: event.Call.Candidate},
		}
	case relay.EventCallEnd:
		reason := ""
		if event.Call != nil {
			reason = event.Call.Reason
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventCallEnd,
			Data:  proto.CallEndEvent{From: event.From, Reason: reason},
		}
	case relay.EventCallToggle:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventCallToggle,
			Data: proto.CallToggleEvent{
				From:    event.From,
				Kind:    event.Call.Track,
				Enabled: event.Call.Enabled,
			},
		}
	case relay.EventNewMessage:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventNewMessage,
			Data:  messagePayload(event.Message),
		}
	default:
		return proto.Outbound{
			Type:  proto.OutboundTypeError,
			Error: &proto.Error{Code: "unknown", Msg: "unknown event"},
		}
	}
}

func messagePayload(msg *store.Message) proto.MessagePayload {
	if msg == nil {
		return proto.MessagePayload{}
	}
	return proto.MessagePayload{
		ID:         msg.ID,
		SenderID:   msg.SenderID,
		ReceiverID: msg.ReceiverID,
		Text:       msg.Text,
		Image:      msg.ImageURL,
		CreatedAt:  msg.CreatedAt.Unix(),
	}
}
