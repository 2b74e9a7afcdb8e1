package parser

import "regexp"

// DefaultCategory is returned when no category trigger matches at all.
const DefaultCategory = "reminders"

// categoryPatterns maps a category to its literal trigger substrings. Slice
// order is the tie-break: on equal non-zero scores the earlier entry wins, so
// reordering this table changes classification results.
type categoryPatterns struct {
	name     string
	triggers []string
}

var categoryTable = []categoryPatterns{
	{"groceries", []string{"grocery", "groceries", "buy", "shopping", "food", "eggs", "milk", "bread", "fruit", "vegetable"}},
	{"appointments", []string{"appointment", "dentist", "doctor", "meeting", "schedule", "book", "reserve"}},
	{"home", []string{"home", "repair", "fix", "clean", "maintenance", "yard", "lawn", "paint"}},
	{"automotive", []string{"car", "oil", "tire", "service", "automotive", "vehicle", "maintenance"}},
	{"travel", []string{"trip", "travel", "vacation", "flight", "hotel", "booking"}},
	{"finances", []string{"bill", "pay", "finance", "money", "budget", "expense", "renewal"}},
	{"recipes", []string{"recipe", "cook", "meal", "dinner", "lunch", "breakfast", "food"}},
	{"childcare", []string{"child", "kids", "liam", "school", "daycare", "babysitter"}},
	{"dates", []string{"date", "dinner date", "movie", "night out", "anniversary"}},
	{"health", []string{"health", "steps", "sleep", "hydration", "water", "workout", "exercise", "run"}},
	{"family", []string{"family", "parents", "in-laws", "relatives"}},
	{"reminders", []string{"remind", "remember", "don't forget", "note"}},
}

// actionPatterns maps an action to its trigger substrings. The first trigger
// found anywhere in the message decides the action, so order matters here too.
type actionPatterns struct {
	name     string
	triggers []string
}

var actionTable = []actionPatterns{
	{ActionAdd, []string{"add", "create", "new", "put", "need", "want"}},
	{ActionComplete, []string{"done", "completed", "finished", "did", "bought", "purchased"}},
	{ActionDelete, []string{"delete", "remove", "cancel", "clear"}},
	{ActionList, []string{"list", "show", "what", "get", "display"}},
	{ActionRemind, []string{"remind", "remember"}},
	{ActionSchedule, []string{"schedule", "book", "appointment", "reserve"}},
}

// Temporal patterns, matched against the lowercased message.
var (
	reToday    = regexp.MustCompile(`\btoday\b`)
	reTomorrow = regexp.MustCompile(`\btomorrow\b`)
	reNextWeek = regexp.MustCompile(`\bnext week\b`)
	reInDays   = regexp.MustCompile(`\bin (\d+) days?\b`)
	reMonthDay = regexp.MustCompile(`\b(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]* (\d{1,2})\b`)
	reClock    = regexp.MustCompile(`\bat\s+(\d{1,2})(?::(\d{2}))?\s*(am|pm)?`)
)

// Recurrence patterns, tested in table order with first-match-wins.
type recurrencePattern struct {
	name string
	re   *regexp.Regexp
}

var recurrenceTable = []recurrencePattern{
	{"daily", regexp.MustCompile(`\bevery day\b|\bdaily\b`)},
	{"weekly", regexp.MustCompile(`\bevery week\b|\bweekly\b|\bevery (mon|tues|wed|thurs|fri|sat|sun)\b`)},
	{"monthly", regexp.MustCompile(`\bevery month\b|\bmonthly\b`)},
	{"yearly", regexp.MustCompile(`\bevery year\b|\bannually\b|\bannual\b`)},
}

// Priority patterns.
var (
	rePriorityHigh   = regexp.MustCompile(`\burgent\b|\basap\b|\bemergency\b`)
	rePriorityMedium = regexp.MustCompile(`\bimportant\b|\bpriority\b`)
)

// Title cleanup: leading action phrases (only the first matching one is
// stripped) and temporal phrases (removed everywhere).
var titlePrefixes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^add\s+`),
	regexp.MustCompile(`(?i)^remind me\s+(to\s+)?`),
	regexp.MustCompile(`(?i)^remember\s+(to\s+)?`),
	regexp.MustCompile(`(?i)^create\s+`),
	regexp.MustCompile(`(?i)^new\s+`),
}

var titleTemporal = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\btoday\b`),
	regexp.MustCompile(`(?i)\btomorrow\b`),
	regexp.MustCompile(`(?i)\bnext week\b`),
	regexp.MustCompile(`(?i)\bin \d+ days?\b`),
	regexp.MustCompile(`(?i)\bevery \w+\b`),
}

// Grocery list splitting: leading verb, item separators, and the trailing
// "to groceries"-style destination phrase that is not itself an item.
var (
	reGroceryVerb = regexp.MustCompile(`(?i)^(add|buy|get|need)\s+`)
	reItemSep     = regexp.MustCompile(`,\s*(?:and\s+)?|\s+and\s+`)
	reItemDest    = regexp.MustCompile(`(?i)\s+(?:to|from|for)\s+(?:the\s+)?(?:groceries|grocery list|shopping list|list)$`)
)
