package repo

const createActivity = `INSERT INTO activities (
                    id, name, description, activity_date, start_minutes, end_minutes,
                    num_places, age_limit, creator_id, address_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (id) DO NOTHING
RETURNING id;`

const activityBase = `SELECT a.id, a.name, a.description, a.activity_date, a.start_minutes, a.end_minutes,
       a.num_places, a.age_limit, a.address_id, u.id, u.username
FROM activities a
JOIN users u ON u.id = a.creator_id`

const getActivity = activityBase + `
WHERE a.id = $1`

// Блокировка строки активности на время read-modify-write:
// два конкурентных enroll не должны оба увидеть свободное место.
const getActivityForUpdate = getActivity + `
FOR UPDATE OF a`

const listActivities = activityBase + `
ORDER BY a.activity_date, a.start_minutes`

const listActivitiesByAddress = activityBase + `
WHERE a.address_id = $1
ORDER BY a.activity_date, a.start_minutes`

const listActivitiesByTag = activityBase + `
JOIN activity_tag at2 ON at2.activity_id = a.id
WHERE at2.tag_id = $1
ORDER BY a.activity_date, a.start_minutes`

const listActivitiesByName = activityBase + `
WHERE a.name ILIKE '%' || $1 || '%'
ORDER BY a.activity_date, a.start_minutes`

const listActivitiesByDate = activityBase + `
WHERE a.activity_date = $1
ORDER BY a.start_minutes`

const updateActivity = `UPDATE activities
SET name = $2, description = $3, activity_date = $4, start_minutes = $5, end_minutes = $6,
    num_places = $7, age_limit = $8, address_id = $9, updated_at = now()
WHERE id = $1`

const deleteActivity = `DELETE FROM activities WHERE id = $1`

const activityExists = `SELECT EXISTS (
  SELECT 1 FROM activities
  WHERE name = $1 AND activity_date = $2 AND start_minutes = $3 AND end_minutes = $4
)`

const deleteOldActivities = `DELETE FROM activities
		WHERE activity_date < now() - make_interval(days => $1)`

const detachAddress = `UPDATE activities SET address_id = NULL, updated_at = now() WHERE id = $1`

// Участники и лист ожидания: порядок фиксируется серийной колонкой seq.
const participantsByActivity = `SELECT u.id, u.username
FROM activity_participant ap
JOIN users u ON u.id = ap.user_id
WHERE ap.activity_id = $1
ORDER BY ap.seq`

const waitingByActivity = `SELECT u.id, u.username
FROM activity_waiting aw
JOIN users u ON u.id = aw.user_id
WHERE aw.activity_id = $1
ORDER BY aw.seq`

const clearParticipants = `DELETE FROM activity_participant WHERE activity_id = $1`

const insertParticipants = `INSERT INTO activity_participant (activity_id, user_id)
SELECT $1, unnest($2::uuid[])`

const clearWaiting = `DELETE FROM activity_waiting WHERE activity_id = $1`

const insertWaiting = `INSERT INTO activity_waiting (activity_id, user_id)
SELECT $1, unnest($2::uuid[])`

const tagsByActivity = `SELECT t.id, t.name
FROM tags t
JOIN activity_tag at2 ON at2.tag_id = t.id
WHERE at2.activity_id = $1
ORDER BY t.name`

const attachTag = `INSERT INTO activity_tag (activity_id, tag_id)
VALUES ($1, $2)
ON CONFLICT DO NOTHING`

const detachTag = `DELETE FROM activity_tag WHERE activity_id = $1 AND tag_id = $2`

const getAddress = `SELECT id, street, city, country FROM addresses WHERE id = $1`

const getTagByID = `SELECT id, name FROM tags WHERE id = $1`

const getTagByName = `SELECT id, name FROM tags WHERE name = $1`

const tagExists = `SELECT EXISTS (SELECT 1 FROM tags WHERE name = $1)`

const getUserByID = `SELECT id, username, first_name, last_name, email, birth_date FROM users WHERE id = $1`

const getUserByUsername = `SELECT id, username, first_name, last_name, email, birth_date FROM users WHERE username = $1`

// OPINIONS
const opinionsByActivity = `SELECT o.activity_id, o.user_id, u.username, o.rating, o.comment
FROM opinion o
JOIN users u ON u.id = o.user_id
WHERE o.activity_id = $1
ORDER BY u.username`

const opinionExists = `SELECT EXISTS (SELECT 1 FROM opinion WHERE activity_id = $1 AND user_id = $2)`

const insertOpinion = `INSERT INTO opinion (activity_id, user_id, rating, comment)
VALUES ($1, $2, $3, $4)`

const deleteOpinion = `DELETE FROM opinion WHERE activity_id = $1 AND user_id = $2`

const deleteOpinionsByActivity = `DELETE FROM opinion WHERE activity_id = $1`

// OUTBOX
const insertOutboxQuery = `
INSERT INTO outbox_event (
  aggregate_id, aggregate_type, event_type, payload, status, attempts, next_attempt_at, created_at
) VALUES ($1,$2,$3, ($4)::jsonb, $5, 0, now(), now())
RETURNING id
`

const reserveBatchSQL = `
WITH picked AS (
	SELECT id
  	FROM outbox_event
  	WHERE status IN ('NEW','FAILED')
		AND next_attempt_at <= now()
    	AND attempts < $3
  	ORDER BY id
  	FOR UPDATE SKIP LOCKED
	LIMIT $2
)
UPDATE outbox_event AS o
SET next_attempt_at = now() + $1::interval
FROM picked
WHERE o.id = picked.id
RETURNING o.id, o.aggregate_id, o.aggregate_type, o.event_type, o.payload, o.status, o.attempts, o.next_attempt_at, o.created_at;
`

const markFailedSQL = `
UPDATE outbox_event
SET status=$2, attempts=attempts+1, next_attempt_at=$3
WHERE id=$1`

const markGaveUpSQL = `
UPDATE outbox_event
SET status=$2, attempts=attempts+1, next_attempt_at = now()
WHERE id=$1
`

const markSentSQL = `UPDATE outbox_event SET status=$2 WHERE id=$1`
