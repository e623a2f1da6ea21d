package v0_rest

import "github.com/socialfeed/server/pkg/reactions"

type LoginReq struct {
	Username string `json:"username" validate:"required,max=20"`
	Password string `json:"password" validate:"required,max=255"`
	TotpCode string `json:"totp_code" validate:"omitempty,len=6,numeric"`
}

type RegisterReq struct {
	Username string `json:"username" validate:"required,min=3,max=20,alphanum"`
	Password string `json:"password" validate:"required,min=8,max=255"`
	Name     string `json:"name" validate:"max=64"`
	Email    string `json:"email" validate:"omitempty,email,max=255"`
}

type UpdateMeReq struct {
	Name   *string `json:"name" validate:"omitempty,min=1,max=64"`
	Email  *string `json:"email" validate:"omitempty,email,max=255"`
	Avatar *string `json:"avatar" validate:"omitempty,url,max=2048"`
}

type AccountVerificationReq struct {
	Password string `json:"password" validate:"required"`
}

type ChangePasswordReq struct {
	OldPassword string `json:"old" validate:"required"`
	NewPassword string `json:"new" validate:"required,min=8,max=255"`
}

type AddAuthenticatorReq struct {
	AccountVerificationReq

	Type     string `json:"type" validate:"required,oneof=totp"`
	Nickname string `json:"nickname" validate:"max=32"`

	TotpSecret string `json:"totp_secret" validate:"required,max=64"`
	TotpCode   string `json:"totp_code" validate:"len=6,numeric"`
}

type CreatePostReq struct {
	Content   string   `json:"content" validate:"max=4000"`
	ImageUrls []string `json:"image_urls" validate:"max=4,dive,url"`
}

type UpdatePostReq struct {
	Content   *string   `json:"content" validate:"omitempty,max=4000"`
	ImageUrls *[]string `json:"image_urls" validate:"omitempty,max=4,dive,url"`
}

// SetReactionReq carries the client's view of whether it had reacted. The
// server reads that from the post itself and only logs a disagreement.
type SetReactionReq struct {
	Kind       reactions.Kind `json:"kind"`
	WasReacted bool           `json:"was_reacted"`
}

type CreateCommentReq struct {
	Content  string `json:"content" validate:"max=2000"`
	ParentId string `json:"parent_id" validate:"omitempty,numeric"`
	ImageUrl string `json:"image_url" validate:"omitempty,url,max=2048"`
}

type UpdateCommentReq struct {
	Content string `json:"content" validate:"required,max=2000"`
}

type AdminUpdateUserReq struct {
	Name  *string `json:"name" validate:"omitempty,min=1,max=64"`
	Email *string `json:"email" validate:"omitempty,email,max=255"`
	Role  *string `json:"role" validate:"omitempty,oneof=user admin"`
}

type CreateNetblockReq struct {
	Address   string `json:"address" validate:"required,max=64"`
	Reason    string `json:"reason" validate:"max=500"`
	ExpiresAt int64  `json:"expires_at" validate:"min=0"`
}
