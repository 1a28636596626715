package spaceweather

// Cause is the dominant cause of expected geomagnetic or auroral activity.
type Cause string

const (
	CauseCoronalHole          Cause = "coronal hole"
	CauseCoronalMassEjection  Cause = "coronal mass ejection"
	CauseDisappearingFilament Cause = "disappearing filament"
	CauseFlare                Cause = "flare"
)

// Valid reports whether c is one of the causes documented by the service.
func (c Cause) Valid() bool {
	switch c {
	case CauseCoronalHole, CauseCoronalMassEjection, CauseDisappearingFilament, CauseFlare:
		return true
	default:
		return false
	}
}

// LatBand is the latitude band from which aurora is likely to be visible.
// The empty value means the service did not supply one.
type LatBand string

const (
	LatBandHigh       LatBand = "high"
	LatBandMid        LatBand = "mid"
	LatBandLow        LatBand = "low"
	LatBandEquatorial LatBand = "equatorial"
)

// Valid reports whether b is one of the documented bands.
func (b LatBand) Valid() bool {
	switch b {
	case LatBandHigh, LatBandMid, LatBandLow, LatBandEquatorial:
		return true
	default:
		return false
	}
}

// MagAlertLevel is the textual severity of a magnetic alert.
type MagAlertLevel string

const (
	MagAlertMinor  MagAlertLevel = "minor"
	MagAlertMajor  MagAlertLevel = "major"
	MagAlertSevere MagAlertLevel = "severe"
)

// Valid reports whether l is one of the documented levels.
func (l MagAlertLevel) Valid() bool {
	switch l {
	case MagAlertMinor, MagAlertMajor, MagAlertSevere:
		return true
	default:
		return false
	}
}

// AuroraOutlook warns of likely auroral activity 3-7 days hence.
type AuroraOutlook struct {
	IssueTime Timestamp `json:"issue_time"`
	StartDate Timestamp `json:"start_date"`
	EndDate   Timestamp `json:"end_date"`
	Cause     Cause     `json:"cause"`
	KAus      *int      `json:"k_aus,omitempty"` // Australian region K index 0-9, nil when not supplied
	LatBand   LatBand   `json:"lat_band,omitempty"`
	Comments  string    `json:"comments"`
}

// AuroraWatch warns of likely auroral activity in the next 48 hours.
type AuroraWatch struct {
	IssueTime Timestamp `json:"issue_time"`
	StartDate Timestamp `json:"start_date"`
	EndDate   Timestamp `json:"end_date"`
	Cause     Cause     `json:"cause"`
	KAus      *int      `json:"k_aus,omitempty"`
	LatBand   LatBand   `json:"lat_band,omitempty"`
	Comments  string    `json:"comments"`
}

// AuroraAlert reports geomagnetic activity in progress and favourable for aurora.
type AuroraAlert struct {
	StartTime   Timestamp `json:"start_time"`
	ValidUntil  Timestamp `json:"valid_until"`
	KAus        int       `json:"k_aus"` // required; a missing value fails decoding
	LatBand     LatBand   `json:"lat_band"`
	Description string    `json:"description"`
}

// MagAlert is a magnetic alert current for the Australian region.
type MagAlert struct {
	StartTime   Timestamp     `json:"start_time"`
	ValidUntil  Timestamp     `json:"valid_until"`
	GScale      int           `json:"g_scale"` // NOAA geomagnetic storm scale, 1-5
	Description MagAlertLevel `json:"description"`
}

// ActivityForecast is the forecast activity level for one day of a warning.
type ActivityForecast struct {
	Date     Timestamp `json:"date"`
	Forecast string    `json:"forecast"`
}

// MagWarning is a geophysical warning active for the Australian region.
// Activity keeps the service's order and any repeated dates.
type MagWarning struct {
	IssueTime Timestamp          `json:"issue_time"`
	StartDate Timestamp          `json:"start_date"`
	EndDate   Timestamp          `json:"end_date"`
	Cause     Cause              `json:"cause"`
	Activity  []ActivityForecast `json:"activity"`
	Comments  string             `json:"comments"`
}

// AIndex is the daily A index for the Australian region, 0-400.
type AIndex struct {
	ValidTime Timestamp `json:"valid_time"`
	Index     int       `json:"index"`
}

// KIndex is a 3-hourly K index, 0-9.
type KIndex struct {
	ValidTime    Timestamp `json:"valid_time"`
	AnalysisTime Timestamp `json:"analysis_time"`
	Index        int       `json:"index"`
}

// DstIndex is a disturbance storm-time index. Values are signed and
// typically fall between -2000 and 300.
type DstIndex struct {
	ValidTime Timestamp `json:"valid_time"`
	Index     int       `json:"index"`
}
