package v0_rest

import (
	structs "github.com/socialfeed/server/pkg/structs"
)

type BaseResp struct {
	Error bool `json:"error"`
}

type ErrResp struct {
	Error  bool              `json:"error"`
	Type   string            `json:"type"`
	Fields map[string]string `json:"fields,omitempty"`

	// very special field only for logging in
	MFAMethods []string `json:"mfa_methods,omitempty"`
}

type ListResp struct {
	Error   bool        `json:"error"`
	Autoget interface{} `json:"autoget"`
	Page    int64       `json:"page#"`
	Pages   int64       `json:"pages,omitempty"`
}

type WelcomeResp struct {
	Error   bool   `json:"error"`
	Name    string `json:"name"`
	Version string `json:"version"`
}

type StatusResp struct {
	RegistrationEnabled bool `json:"registrationEnabled"`
	RepairMode          bool `json:"isRepairMode"`
	IPBlocked           bool `json:"ipBlocked"`
}

type StatisticsResp struct {
	UserCount    int64 `json:"users"`
	PostCount    int64 `json:"posts"`
	CommentCount int64 `json:"comments"`
}

type AuthResp struct {
	Error   bool              `json:"error"`
	Account structs.V0User    `json:"account"`
	Session structs.V0Session `json:"session"`
	Token   string            `json:"token"`
}

type MeResp struct {
	Error bool `json:"error"`
	structs.V0User
}

type NewTotpSecretResp struct {
	Error           bool   `json:"error"`
	Secret          string `json:"secret"`
	ProvisioningUri string `json:"provisioning_uri"`
	QRCodeSVG       string `json:"qr_code_svg"`
}

type NewMfaResp struct {
	Error         bool                     `json:"error"`
	Authenticator *structs.V0Authenticator `json:"authenticator,omitempty"`
}

type UploadResp struct {
	Error bool `json:"error"`
	structs.V0Upload
}

type DashboardStatsResp struct {
	Error bool `json:"error"`
	structs.V0DashboardStats
}

type NetblockResp struct {
	Id        string `json:"id"`
	Address   string `json:"address"`
	Reason    string `json:"reason,omitempty"`
	CreatedBy string `json:"created_by"`
	CreatedAt int64  `json:"created_at"`
	ExpiresAt int64  `json:"expires_at,omitempty"`
}

type ReconcileResp struct {
	Error     bool   `json:"error"`
	Fixed     int    `json:"fixed"`
	LastRun   int64  `json:"last_run,omitempty"`
	LastError string `json:"last_error,omitempty"`
}
