package styles

// Plain unicode status indicators. Kept ASCII-adjacent so output renders
// without a patched font.
const (
	IconSuccess = "✓"
	IconError   = "✗"
	IconWarning = "!"
	IconInfo    = "·"
	IconActive  = "*"
	IconBullet  = "▸"
)
