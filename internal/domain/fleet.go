package domain

import (
	"errors"
	"strings"
)

// DeliveryType is the delivery capability of a tanker or the requirement of a customer.
type DeliveryType string

const (
	DeliveryBulk   DeliveryType = "bulk"
	DeliveryMobile DeliveryType = "mobile"
	DeliveryBoth   DeliveryType = "both"
)

var ErrInvalidDeliveryType = errors.New("invalid delivery type")

func ParseDeliveryType(in string) (DeliveryType, error) {
	dt := DeliveryType(strings.ToLower(strings.TrimSpace(in)))
	if dt.Valid() {
		return dt, nil
	}
	return "", ErrInvalidDeliveryType
}

func (dt DeliveryType) Valid() bool {
	switch dt {
	case DeliveryBulk, DeliveryMobile, DeliveryBoth:
		return true
	default:
		return false
	}
}

func (dt DeliveryType) String() string {
	return string(dt)
}

// Serves reports whether a tanker with capability dt can deliver to a
// customer requiring want. "both" serves every customer.
func (dt DeliveryType) Serves(want DeliveryType) bool {
	return dt == DeliveryBoth || dt == want
}

// TankerStatus is the operational state of a tanker.
type TankerStatus string

const (
	TankerActive      TankerStatus = "active"
	TankerMaintenance TankerStatus = "maintenance"
	TankerInactive    TankerStatus = "inactive"
)

var ErrInvalidTankerStatus = errors.New("invalid tanker status")

func ParseTankerStatus(in string) (TankerStatus, error) {
	s := TankerStatus(strings.ToLower(strings.TrimSpace(in)))
	switch s {
	case TankerActive, TankerMaintenance, TankerInactive:
		return s, nil
	default:
		return "", ErrInvalidTankerStatus
	}
}

func (s TankerStatus) String() string {
	return string(s)
}

type FuelBlend struct {
	BlendID             int
	Code                string
	Name                string
	BiodieselPercentage float64
}

type Emirate struct {
	EmirateID int
	Code      string
	Name      string
}

// Tanker is a delivery vehicle. Blends and Emirates are the association sets
// loaded from tanker_blends and tanker_emirates.
type Tanker struct {
	TankerID        int
	Name            string
	Registration    string
	CapacityLiters  float64
	DeliveryType    DeliveryType
	Status          TankerStatus
	Is3PL           bool
	DefaultDriverID *int
	Lifecycle       Lifecycle
	Blends          []FuelBlend
	Emirates        []Emirate
}

func (t *Tanker) SupportsBlend(blendID int) bool {
	for _, b := range t.Blends {
		if b.BlendID == blendID {
			return true
		}
	}
	return false
}

func (t *Tanker) CoversEmirate(emirateID int) bool {
	for _, e := range t.Emirates {
		if e.EmirateID == emirateID {
			return true
		}
	}
	return false
}

func (t *Tanker) BlendCodes() []string {
	out := make([]string, 0, len(t.Blends))
	for _, b := range t.Blends {
		out = append(out, b.Code)
	}
	return out
}

func (t *Tanker) EmirateNames() []string {
	out := make([]string, 0, len(t.Emirates))
	for _, e := range t.Emirates {
		out = append(out, e.Name)
	}
	return out
}

// Customer is the demand side of a trip.
type Customer struct {
	CustomerID            int
	Name                  string
	Code                  string
	DeliveryType          DeliveryType
	FuelBlendID           *int
	EmirateID             *int
	EstimatedVolumeLiters float64
	Lifecycle             Lifecycle
}
