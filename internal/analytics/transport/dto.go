package transport

// SequenceMetrics is the headline engagement summary for one sequence.
// Rates are percentages rounded to one decimal.
type SequenceMetrics struct {
	SequenceID           string  `json:"sequenceId"`
	SequenceName         string  `json:"sequenceName"`
	TotalEnrollments     int     `json:"totalEnrollments"`
	ActiveEnrollments    int     `json:"activeEnrollments"`
	CompletedEnrollments int     `json:"completedEnrollments"`
	PausedEnrollments    int     `json:"pausedEnrollments"`
	TotalEmailsSent      int     `json:"totalEmailsSent"`
	TotalOpened          int     `json:"totalOpened"`
	TotalClicked         int     `json:"totalClicked"`
	OpenRate             float64 `json:"openRate"`
	ClickRate            float64 `json:"clickRate"`
	ClickToOpenRate      float64 `json:"clickToOpenRate"`
	Conversions          int     `json:"conversions"`
	ConversionRate       float64 `json:"conversionRate"`
}

// StepMetrics is per-step engagement. DropOffRate compares sends against
// the previous step; the first step always reports zero.
type StepMetrics struct {
	StepID      string  `json:"stepId"`
	StepOrder   int     `json:"stepOrder"`
	SubjectEN   string  `json:"subjectEn"`
	SubjectFR   string  `json:"subjectFr"`
	DelayDays   int     `json:"delayDays"`
	DelayHours  int     `json:"delayHours"`
	EmailsSent  int     `json:"emailsSent"`
	Opened      int     `json:"opened"`
	Clicked     int     `json:"clicked"`
	OpenRate    float64 `json:"openRate"`
	ClickRate   float64 `json:"clickRate"`
	DropOffRate float64 `json:"dropOffRate"`
}

// FunnelStage percentages are whole numbers relative to enrollments.
type FunnelStage struct {
	Stage      string `json:"stage"`
	Count      int    `json:"count"`
	Percentage int    `json:"percentage"`
}

type TrendPoint struct {
	Date        string `json:"date"`
	Enrollments int    `json:"enrollments"`
}

type PerformanceReport struct {
	Sequence         SequenceMetrics `json:"sequence"`
	Steps            []StepMetrics   `json:"steps"`
	EnrollmentTrend  []TrendPoint    `json:"enrollmentTrend"`
	ConversionFunnel []FunnelStage   `json:"conversionFunnel"`
}

// ComparisonResult reports the conversion-rate winner between two sequences.
// Improvement is the winner's relative lift in percent, 100 when the losing
// rate is zero, 0 on a tie.
type ComparisonResult struct {
	SequenceA   SequenceMetrics `json:"sequenceA"`
	SequenceB   SequenceMetrics `json:"sequenceB"`
	Winner      string          `json:"winner"`
	Improvement float64         `json:"improvement"`
}

type SequencePerformance struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	ConversionRate float64 `json:"conversionRate"`
}

type ActivityPoint struct {
	Date       string `json:"date"`
	EmailsSent int    `json:"emailsSent"`
	Opened     int    `json:"opened"`
	Clicked    int    `json:"clicked"`
}

type OverallAnalytics struct {
	TotalSequences           int                  `json:"totalSequences"`
	ActiveSequences          int                  `json:"activeSequences"`
	TotalEnrollments         int                  `json:"totalEnrollments"`
	TotalEmailsSent          int                  `json:"totalEmailsSent"`
	AverageOpenRate          float64              `json:"averageOpenRate"`
	AverageClickRate         float64              `json:"averageClickRate"`
	AverageConversionRate    float64              `json:"averageConversionRate"`
	TopPerformingSequence    *SequencePerformance `json:"topPerformingSequence"`
	BottomPerformingSequence *SequencePerformance `json:"bottomPerformingSequence"`
	RecentActivity           []ActivityPoint      `json:"recentActivity"`
}
