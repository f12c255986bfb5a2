package registry

// Category tags for utterances resolved outside the registry.
const (
	CategoryFreeform = "freeform"
	CategoryUnknown  = "unknown"
)

// HelpText is what the user sees when nothing matched. It doubles as the
// synthetic single-cell result for category "unknown"; no query is executed.
const HelpText = `Available queries:
- show active tenants
- show all tenants
- colleagues by location (chart)
- exceptions by type (chart)
- daily exceptions (chart)
- tenant overview (chart)
- shift patterns (chart)
- exception status distribution (chart)
- colleague activity
- top 5 colleagues generating exceptions`

// Default returns the built-in pattern set for the tas_demo schema. Adding a
// phrase here is the primary extensibility point; nothing else needs to change.
func Default() *Registry {
	return New([]Entry{
		{
			Phrase: "active tenants",
			SQL:    "SELECT tenant_id, tenant_name, tenant_code, onboarded_date_time_utc FROM tas_demo.tenant WHERE is_active = true",
		},
		{
			Phrase: "all tenants",
			SQL:    "SELECT * FROM tas_demo.tenant ORDER BY tenant_name",
		},
		{
			Phrase: "colleagues by location",
			SQL: `SELECT
    l.location_name,
    t.tenant_name,
    COUNT(cd.colleague_uuid) as colleague_count
FROM tas_demo.location l
JOIN tas_demo.tenant t ON l.tenant_id = t.tenant_id
LEFT JOIN tas_demo.colleague_details cd ON l.location_id = cd.location_id
GROUP BY l.location_name, t.tenant_name, l.location_id
ORDER BY colleague_count DESC`,
			Chart: &ChartHint{Kind: ChartBar, ValueColumns: []string{"colleague_count"}, LabelColumn: "location_name"},
		},
		{
			Phrase: "exceptions by type",
			SQL: `SELECT
    e.exception_type,
    COUNT(*) as exception_count,
    AVG(e.exception_duration) as avg_duration_mins,
    COUNT(DISTINCT e.colleague_uuid) as affected_colleagues
FROM tas_demo.exception e
GROUP BY e.exception_type
ORDER BY exception_count DESC`,
			Chart: &ChartHint{Kind: ChartDonut, ValueColumns: []string{"exception_count"}, LabelColumn: "exception_type"},
		},
		{
			Phrase: "daily exceptions",
			SQL: `SELECT
    DATE(e.exception_date_utc) as exception_date,
    COUNT(*) as total_exceptions,
    COUNT(CASE WHEN ed.status = 'RESOLVED' THEN 1 END) as resolved_count,
    COUNT(CASE WHEN ed.status = 'OPEN' THEN 1 END) as open_count
FROM tas_demo.exception e
JOIN tas_demo.exception_detail ed ON e.exception_id = ed.exception_id
WHERE e.exception_date_utc >= CURRENT_DATE - INTERVAL '30 days'
GROUP BY DATE(e.exception_date_utc)
ORDER BY exception_date DESC`,
			Chart: &ChartHint{Kind: ChartLine, ValueColumns: []string{"total_exceptions", "resolved_count", "open_count"}, LabelColumn: "exception_date"},
		},
		{
			Phrase: "tenant overview",
			SQL: `SELECT
    t.tenant_name,
    t.is_active,
    COUNT(DISTINCT l.location_id) as location_count,
    COUNT(DISTINCT cd.colleague_uuid) as colleague_count,
    COUNT(DISTINCT ps.planned_shift_id) as shift_count
FROM tas_demo.tenant t
LEFT JOIN tas_demo.location l ON t.tenant_id = l.tenant_id
LEFT JOIN tas_demo.colleague_details cd ON t.tenant_id = cd.tenant_id
LEFT JOIN tas_demo.planned_shift ps ON t.tenant_id = ps.tenant_id
GROUP BY t.tenant_id, t.tenant_name, t.is_active
ORDER BY colleague_count DESC`,
			Chart: &ChartHint{Kind: ChartBar, ValueColumns: []string{"location_count", "colleague_count", "shift_count"}, LabelColumn: "tenant_name"},
		},
		{
			Phrase: "shift patterns",
			SQL: `SELECT
    EXTRACT(HOUR FROM start_date_time_utc) as shift_hour,
    COUNT(*) as shift_count,
    COUNT(DISTINCT colleague_uuid) as unique_colleagues
FROM tas_demo.planned_shift
WHERE start_date_time_utc >= CURRENT_DATE - INTERVAL '7 days'
GROUP BY EXTRACT(HOUR FROM start_date_time_utc)
ORDER BY shift_hour`,
			Chart: &ChartHint{Kind: ChartLine, ValueColumns: []string{"shift_count"}, LabelColumn: "shift_hour"},
		},
		{
			Phrase: "exception status distribution",
			SQL: `SELECT
    ed.status,
    t.tenant_name,
    COUNT(*) as count
FROM tas_demo.exception_detail ed
JOIN tas_demo.tenant t ON ed.tenant_id = t.tenant_id
GROUP BY ed.status, t.tenant_name
ORDER BY t.tenant_name, ed.status`,
			Chart: &ChartHint{Kind: ChartStackedBar, ValueColumns: []string{"count"}, GroupBy: []string{"tenant_name", "status"}},
		},
		{
			Phrase: "colleague activity",
			SQL: `SELECT
    cd.colleague_uuid,
    t.tenant_name,
    l.location_name,
    COUNT(DISTINCT ps.planned_shift_id) as total_shifts,
    COUNT(DISTINCT e.exception_id) as total_exceptions
FROM tas_demo.colleague_details cd
JOIN tas_demo.tenant t ON cd.tenant_id = t.tenant_id
JOIN tas_demo.location l ON cd.location_id = l.location_id
LEFT JOIN tas_demo.planned_shift ps ON cd.colleague_uuid = ps.colleague_uuid
LEFT JOIN tas_demo.exception e ON cd.colleague_uuid = e.colleague_uuid
GROUP BY cd.colleague_uuid, t.tenant_name, l.location_name
HAVING COUNT(DISTINCT ps.planned_shift_id) > 0 OR COUNT(DISTINCT e.exception_id) > 0
ORDER BY total_exceptions DESC
LIMIT 20`,
		},
		{
			Phrase: "top 5 colleagues",
			SQL: `WITH colleague_exceptions AS (
    SELECT
        e.colleague_uuid,
        cd.colleague_payload->>'name' as colleague_name,
        t.tenant_name,
        l.location_name,
        COUNT(DISTINCT e.exception_id) as exception_count,
        STRING_AGG(DISTINCT e.exception_type, ', ') as exception_types,
        AVG(e.exception_duration) as avg_exception_duration_mins
    FROM tas_demo.exception e
    JOIN tas_demo.colleague_details cd ON e.colleague_uuid = cd.colleague_uuid
    JOIN tas_demo.tenant t ON cd.tenant_id = t.tenant_id
    JOIN tas_demo.location l ON cd.location_id = l.location_id
    WHERE e.exception_date_utc >= CURRENT_DATE - INTERVAL '30 days'
    GROUP BY e.colleague_uuid, cd.colleague_payload->>'name', t.tenant_name, l.location_name
    ORDER BY exception_count DESC
    LIMIT 5
),
recent_shifts AS (
    SELECT
        ps.colleague_uuid,
        COUNT(*) as total_shifts,
        MIN(ps.start_date_time_utc) as earliest_shift,
        MAX(ps.end_date_time_utc) as latest_shift,
        AVG(EXTRACT(EPOCH FROM (ps.end_date_time_utc - ps.start_date_time_utc))/3600) as avg_shift_hours
    FROM tas_demo.planned_shift ps
    WHERE ps.start_date_time_utc >= CURRENT_DATE - INTERVAL '30 days'
    GROUP BY ps.colleague_uuid
)
SELECT
    ce.colleague_uuid,
    ce.colleague_name,
    ce.tenant_name,
    ce.location_name,
    ce.exception_count,
    ce.exception_types,
    ce.avg_exception_duration_mins,
    COALESCE(rs.total_shifts, 0) as total_shifts,
    rs.earliest_shift,
    rs.latest_shift,
    ROUND(rs.avg_shift_hours::numeric, 2) as avg_shift_hours
FROM colleague_exceptions ce
LEFT JOIN recent_shifts rs ON ce.colleague_uuid = rs.colleague_uuid
ORDER BY ce.exception_count DESC`,
		},
	})
}
