package payment

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"venue-booking/internal/model"
	apperrors "venue-booking/pkg/app_errors"

	"github.com/google/uuid"
)

const (
	metaEventID        = "eventId"
	metaTicketType     = "ticketType"
	metaTableID        = "tableId"
	metaTableSelection = "tableSelection"
	metaName           = "name"
	metaEmail          = "email"
	metaPhone          = "phone"
	metaDOB            = "dob"
	metaQuantity       = "quantity"
	metaPartySize      = "partySize"
	metaCouponCode     = "couponCode"
	metaBookingRef     = "bookingRef"
)

const dobLayout = "2006-01-02"

// MetadataToMap flattens booking metadata into provider key/value pairs.
func MetadataToMap(m model.BookingMetadata) map[string]string {
	out := map[string]string{
		metaEventID:    m.EventID.String(),
		metaTicketType: string(m.TicketType),
		metaName:       m.CustomerName,
		metaEmail:      m.CustomerEmail,
		metaQuantity:   strconv.Itoa(m.Quantity),
		metaBookingRef: m.BookingRef,
	}
	if m.TableID != "" {
		out[metaTableID] = m.TableID
	}
	if m.TableLabel != "" {
		out[metaTableSelection] = m.TableLabel
	}
	if m.CustomerPhone != "" {
		out[metaPhone] = m.CustomerPhone
	}
	if m.CustomerDOB != nil {
		out[metaDOB] = m.CustomerDOB.Format(dobLayout)
	}
	if m.CouponCode != "" {
		out[metaCouponCode] = m.CouponCode
	}
	if m.PartySize > 0 {
		out[metaPartySize] = strconv.Itoa(m.PartySize)
	}
	return out
}

// optionalMetaKeys are omitted by MetadataToMap when empty.
var optionalMetaKeys = []string{metaTableID, metaTableSelection, metaPhone, metaDOB, metaCouponCode, metaPartySize}

// UpdateMetadataMap is MetadataToMap for an existing intent. The provider
// merges metadata on update, so optional keys left out of the new selection
// are sent as "" to clear values from the previous one.
func UpdateMetadataMap(m model.BookingMetadata) map[string]string {
	out := MetadataToMap(m)
	for _, k := range optionalMetaKeys {
		if _, ok := out[k]; !ok {
			out[k] = ""
		}
	}
	return out
}

// ParseMetadata validates provider metadata once. Missing event id, email or
// name, or a table reservation without a table id, is rejected.
func ParseMetadata(raw map[string]string) (model.BookingMetadata, error) {
	var m model.BookingMetadata

	eventID, err := uuid.Parse(strings.TrimSpace(raw[metaEventID]))
	if err != nil {
		return m, fmt.Errorf("%w: eventId", apperrors.ErrInvalidIntentMetadata)
	}
	m.EventID = eventID

	m.CustomerEmail = strings.TrimSpace(raw[metaEmail])
	if m.CustomerEmail == "" {
		return m, fmt.Errorf("%w: email", apperrors.ErrInvalidIntentMetadata)
	}
	m.CustomerName = strings.TrimSpace(raw[metaName])
	if m.CustomerName == "" {
		return m, fmt.Errorf("%w: name", apperrors.ErrInvalidIntentMetadata)
	}

	m.TicketType = model.TicketType(raw[metaTicketType])
	if m.TicketType == "" {
		m.TicketType = model.TicketTypeStandard
	}
	if !m.TicketType.IsValid() {
		return m, fmt.Errorf("%w: ticketType %q", apperrors.ErrInvalidIntentMetadata, m.TicketType)
	}

	m.TableID = strings.TrimSpace(raw[metaTableID])
	if m.TicketType.IsTable() && m.TableID == "" {
		return m, fmt.Errorf("%w: tableId", apperrors.ErrInvalidIntentMetadata)
	}
	m.TableLabel = raw[metaTableSelection]
	m.CustomerPhone = raw[metaPhone]
	m.CouponCode = model.NormalizePromoCode(raw[metaCouponCode])
	m.BookingRef = raw[metaBookingRef]

	m.Quantity = 1
	if q := raw[metaQuantity]; q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 1 {
			return m, fmt.Errorf("%w: quantity %q", apperrors.ErrInvalidIntentMetadata, q)
		}
		m.Quantity = n
	}

	if ps := raw[metaPartySize]; ps != "" {
		n, err := strconv.Atoi(ps)
		if err != nil || n < 1 {
			return m, fmt.Errorf("%w: partySize %q", apperrors.ErrInvalidIntentMetadata, ps)
		}
		m.PartySize = n
	}

	if dob := raw[metaDOB]; dob != "" {
		t, err := time.ParseInLocation(dobLayout, dob, time.UTC)
		if err != nil {
			return m, fmt.Errorf("%w: dob", apperrors.ErrInvalidIntentMetadata)
		}
		m.CustomerDOB = &t
	}

	return m, nil
}
