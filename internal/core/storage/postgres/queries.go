package postgres

const queryInsertLocation = `
	INSERT INTO locations (id, user_id, recorded_at, lat, long, accuracy, speed)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
`

const queryDeleteLocation = `
	DELETE FROM locations WHERE id = $1
`

const locationColumns = `id, user_id, recorded_at, lat, long, accuracy, speed`

const queryGetLocationByID = `
	SELECT ` + locationColumns + `
	FROM locations
	WHERE id = $1
`

const queryGetLocationByUserAndTimestamp = `
	SELECT ` + locationColumns + `
	FROM locations
	WHERE user_id = $1 AND recorded_at = $2
`

const queryGetLatestLocationForUser = `
	SELECT ` + locationColumns + `
	FROM locations
	WHERE user_id = $1
	ORDER BY recorded_at DESC
	LIMIT 1
`
