package auth

import (
	"context"

	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/pkg/middleware"
)

// CapabilityManageWooCommerce gates the color settings.
const CapabilityManageWooCommerce = "manage_woocommerce"

// DeniedMessage is shown to callers lacking a capability.
const DeniedMessage = "You do not have permission to access this page."

// PermissionChecker decides whether the caller of ctx holds a capability.
type PermissionChecker interface {
	Can(ctx context.Context, capability string) bool
}

// ClaimsChecker grants what the request's bearer token claims.
type ClaimsChecker struct{}

// Can implements PermissionChecker.
func (ClaimsChecker) Can(ctx context.Context, capability string) bool {
	return middleware.ClaimsCan(ctx, capability)
}
