// Package policy decides whether a caller may perform an action on a
// resource that lives in a given region. All role and region rules of the
// system are declared in one table so the full matrix can be audited and
// tested cell by cell.
package policy

import (
	"fmt"

	"github.com/rishabhd491/savor-rbac-regional-platform/internal/models"
)

// Action names a guarded mutation or view
type Action string

const (
	ActionCartRemove         Action = "cart.remove"
	ActionOrderCreate        Action = "order.create"
	ActionOrderView          Action = "order.view"
	ActionOrderUpdatePayment Action = "order.update_payment"
	ActionOrderSetStatus     Action = "order.set_status"
	ActionOrderSettle        Action = "order.settle"
	ActionPaymentMethodWrite Action = "payment_method.write"
)

// Actions returns every guarded action
func Actions() []Action {
	return []Action{
		ActionCartRemove,
		ActionOrderCreate,
		ActionOrderView,
		ActionOrderUpdatePayment,
		ActionOrderSetStatus,
		ActionOrderSettle,
		ActionPaymentMethodWrite,
	}
}

// StatusAction picks the action guarding a move to the given status
func StatusAction(next models.OrderStatus) Action {
	if next.Settles() {
		return ActionOrderSettle
	}
	return ActionOrderSetStatus
}

// Scope is the verdict of a single table cell
type Scope int

const (
	// Deny rejects the action regardless of the resource region
	Deny Scope = iota
	// SameRegion allows the action only on resources in the caller's region
	SameRegion
	// AnyRegion allows the action on resources in every region
	AnyRegion
)

func (s Scope) String() string {
	switch s {
	case Deny:
		return "deny"
	case SameRegion:
		return "same-region"
	case AnyRegion:
		return "any-region"
	}
	return fmt.Sprintf("scope(%d)", int(s))
}

// Rule is one cell of the decision table. Reason is reported when the
// rule denies the request.
type Rule struct {
	Scope  Scope
	Reason string
}

type cell struct {
	action Action
	role   models.Role
	region models.Region
	rule   Rule
}

const (
	reasonCrossRegionCart      = "cannot modify cart from another region"
	reasonCrossRegionOrder     = "cannot order from a restaurant in a different region"
	reasonMemberCheckout       = "checkout is disabled for members in the INDIA region"
	reasonCrossRegionView      = "cannot view orders from a different region"
	reasonMemberPayment        = "members cannot modify payments"
	reasonManagerPayment       = "managers cannot modify payment methods"
	reasonCrossRegionManage    = "cannot manage orders from a different region"
	reasonMemberSettle         = "members cannot pay or cancel orders"
	reasonAdminOnlyPaymentMeth = "only admins can add or modify payment methods"
)

// cells is the complete decision table: action x role x caller region.
var cells = []cell{
	{ActionCartRemove, models.RoleAdmin, models.RegionIndia, Rule{AnyRegion, ""}},
	{ActionCartRemove, models.RoleAdmin, models.RegionAmerica, Rule{AnyRegion, ""}},
	{ActionCartRemove, models.RoleManager, models.RegionIndia, Rule{AnyRegion, ""}},
	{ActionCartRemove, models.RoleManager, models.RegionAmerica, Rule{AnyRegion, ""}},
	{ActionCartRemove, models.RoleMember, models.RegionIndia, Rule{SameRegion, reasonCrossRegionCart}},
	{ActionCartRemove, models.RoleMember, models.RegionAmerica, Rule{SameRegion, reasonCrossRegionCart}},

	{ActionOrderCreate, models.RoleAdmin, models.RegionIndia, Rule{AnyRegion, ""}},
	{ActionOrderCreate, models.RoleAdmin, models.RegionAmerica, Rule{AnyRegion, ""}},
	{ActionOrderCreate, models.RoleManager, models.RegionIndia, Rule{SameRegion, reasonCrossRegionOrder}},
	{ActionOrderCreate, models.RoleManager, models.RegionAmerica, Rule{SameRegion, reasonCrossRegionOrder}},
	{ActionOrderCreate, models.RoleMember, models.RegionIndia, Rule{Deny, reasonMemberCheckout}},
	{ActionOrderCreate, models.RoleMember, models.RegionAmerica, Rule{SameRegion, reasonCrossRegionOrder}},

	// no admin exception: admins only see orders of their assigned region
	{ActionOrderView, models.RoleAdmin, models.RegionIndia, Rule{SameRegion, reasonCrossRegionView}},
	{ActionOrderView, models.RoleAdmin, models.RegionAmerica, Rule{SameRegion, reasonCrossRegionView}},
	{ActionOrderView, models.RoleManager, models.RegionIndia, Rule{SameRegion, reasonCrossRegionView}},
	{ActionOrderView, models.RoleManager, models.RegionAmerica, Rule{SameRegion, reasonCrossRegionView}},
	{ActionOrderView, models.RoleMember, models.RegionIndia, Rule{SameRegion, reasonCrossRegionView}},
	{ActionOrderView, models.RoleMember, models.RegionAmerica, Rule{SameRegion, reasonCrossRegionView}},

	{ActionOrderUpdatePayment, models.RoleAdmin, models.RegionIndia, Rule{AnyRegion, ""}},
	{ActionOrderUpdatePayment, models.RoleAdmin, models.RegionAmerica, Rule{AnyRegion, ""}},
	{ActionOrderUpdatePayment, models.RoleManager, models.RegionIndia, Rule{Deny, reasonManagerPayment}},
	{ActionOrderUpdatePayment, models.RoleManager, models.RegionAmerica, Rule{Deny, reasonManagerPayment}},
	{ActionOrderUpdatePayment, models.RoleMember, models.RegionIndia, Rule{Deny, reasonMemberPayment}},
	{ActionOrderUpdatePayment, models.RoleMember, models.RegionAmerica, Rule{Deny, reasonMemberPayment}},

	{ActionOrderSetStatus, models.RoleAdmin, models.RegionIndia, Rule{AnyRegion, ""}},
	{ActionOrderSetStatus, models.RoleAdmin, models.RegionAmerica, Rule{AnyRegion, ""}},
	{ActionOrderSetStatus, models.RoleManager, models.RegionIndia, Rule{SameRegion, reasonCrossRegionManage}},
	{ActionOrderSetStatus, models.RoleManager, models.RegionAmerica, Rule{SameRegion, reasonCrossRegionManage}},
	{ActionOrderSetStatus, models.RoleMember, models.RegionIndia, Rule{SameRegion, reasonCrossRegionManage}},
	{ActionOrderSetStatus, models.RoleMember, models.RegionAmerica, Rule{SameRegion, reasonCrossRegionManage}},

	{ActionOrderSettle, models.RoleAdmin, models.RegionIndia, Rule{AnyRegion, ""}},
	{ActionOrderSettle, models.RoleAdmin, models.RegionAmerica, Rule{AnyRegion, ""}},
	{ActionOrderSettle, models.RoleManager, models.RegionIndia, Rule{SameRegion, reasonCrossRegionManage}},
	{ActionOrderSettle, models.RoleManager, models.RegionAmerica, Rule{SameRegion, reasonCrossRegionManage}},
	{ActionOrderSettle, models.RoleMember, models.RegionIndia, Rule{Deny, reasonMemberSettle}},
	{ActionOrderSettle, models.RoleMember, models.RegionAmerica, Rule{Deny, reasonMemberSettle}},

	{ActionPaymentMethodWrite, models.RoleAdmin, models.RegionIndia, Rule{AnyRegion, ""}},
	{ActionPaymentMethodWrite, models.RoleAdmin, models.RegionAmerica, Rule{AnyRegion, ""}},
	{ActionPaymentMethodWrite, models.RoleManager, models.RegionIndia, Rule{Deny, reasonAdminOnlyPaymentMeth}},
	{ActionPaymentMethodWrite, models.RoleManager, models.RegionAmerica, Rule{Deny, reasonAdminOnlyPaymentMeth}},
	{ActionPaymentMethodWrite, models.RoleMember, models.RegionIndia, Rule{Deny, reasonAdminOnlyPaymentMeth}},
	{ActionPaymentMethodWrite, models.RoleMember, models.RegionAmerica, Rule{Deny, reasonAdminOnlyPaymentMeth}},
}

type key struct {
	action Action
	role   models.Role
	region models.Region
}

var table = buildTable(cells)

// buildTable indexes the cells and panics unless every combination of
// action, role and region has exactly one rule.
func buildTable(cells []cell) map[key]Rule {
	t := make(map[key]Rule, len(cells))
	for _, c := range cells {
		k := key{c.action, c.role, c.region}
		if _, dup := t[k]; dup {
			panic(fmt.Sprintf("policy: duplicate rule for %s/%s/%s", c.action, c.role, c.region))
		}
		t[k] = c.rule
	}
	for _, a := range Actions() {
		for _, r := range models.Roles() {
			for _, g := range models.Regions() {
				if _, ok := t[key{a, r, g}]; !ok {
					panic(fmt.Sprintf("policy: missing rule for %s/%s/%s", a, r, g))
				}
			}
		}
	}
	return t
}

// Lookup returns the rule for a role and caller region
func Lookup(action Action, role models.Role, region models.Region) (Rule, bool) {
	rule, ok := table[key{action, role, region}]
	return rule, ok
}

// Decide evaluates the table for caller against a resource in
// resourceRegion. A nil caller yields ErrAuthenticationRequired.
func Decide(action Action, caller *models.User, resourceRegion models.Region) error {
	if caller == nil {
		return ErrAuthenticationRequired
	}

	rule, ok := Lookup(action, caller.Role, caller.Region)
	if !ok {
		return Forbidden(action, fmt.Sprintf("no rule for role %s in region %s", caller.Role, caller.Region))
	}

	switch rule.Scope {
	case AnyRegion:
		return nil
	case SameRegion:
		if resourceRegion == caller.Region {
			return nil
		}
		return Forbidden(action, rule.Reason)
	default:
		return Forbidden(action, rule.Reason)
	}
}

// Observer is notified of every decision
type Observer func(action Action, allowed bool)

// Authorizer evaluates the decision table and reports each verdict to an
// optional observer.
type Authorizer struct {
	observe Observer
}

// NewAuthorizer creates an Authorizer; observe may be nil
func NewAuthorizer(observe Observer) *Authorizer {
	return &Authorizer{observe: observe}
}

// Authorize is Decide plus observation
func (a *Authorizer) Authorize(action Action, caller *models.User, resourceRegion models.Region) error {
	err := Decide(action, caller, resourceRegion)
	if a != nil && a.observe != nil && caller != nil {
		a.observe(action, err == nil)
	}
	return err
}
