package mask

// Default rule priorities. Key-name rules outrank value-shape rules so an
// explicitly named field wins over a shape guess.
const (
	priorityKeyRule   = 100
	priorityShapeRule = 50
)

// defaultRules covers the common sensitive-field families. PARTIAL is chosen
// where the redacted output should still hint at the data's shape; FULL
// where nothing of the value may survive.
func defaultRules() []Rule {
	return []Rule{
		{
			Pattern:        `^(password|passwd|pwd|passphrase)$`,
			Strategy:       StrategyFull,
			Priority:       priorityKeyRule,
			PreserveLength: true,
		},
		{
			Pattern:  `(api[-_]?key|secret|token|credential|authorization)`,
			Strategy: StrategyFull,
			Priority: priorityKeyRule,
		},
		{
			Pattern:  `^e[-_]?mail`,
			Strategy: StrategyPartial,
			Priority: priorityKeyRule,
		},
		{
			// Email-shaped values under any key.
			ValuePattern: `^[^@\s]+@[^@\s]+\.[^@\s]+$`,
			Strategy:     StrategyPartial,
			Priority:     priorityShapeRule,
		},
		{
			// Card-shaped values: 12-19 digits with optional separators.
			ValuePattern: `^[0-9](?:[0-9 -]{10,17})[0-9]$`,
			Strategy:     StrategyPartial,
			Priority:     priorityShapeRule,
		},
		{
			// SSN-shaped values.
			ValuePattern: `^[0-9]{3}-[0-9]{2}-[0-9]{4}$`,
			Strategy:     StrategyPartial,
			Priority:     priorityShapeRule,
		},
	}
}
