package shared

// Asynq task type names, shared between the API (enqueue) and the
// worker (handle).
const (
	TypeSendVerificationEmail = "email:verification"
	TypeSendResetEmail        = "email:reset_password"
	TypeProcessAssetImage     = "asset:process_image"
	TypeCleanupOrphanedBlobs  = "asset:cleanup_orphaned_blobs"
	TypeCleanupExpiredTokens  = "auth:cleanup_expired_tokens"
)

// ProcessAssetImagePayload identifies the asset whose thumbnails the
// worker should generate.
type ProcessAssetImagePayload struct {
	AssetID  string `json:"asset_id"`
	FilePath string `json:"file_path"`
}
