package postgres

const schema = `
-- Learner profiles
CREATE TABLE IF NOT EXISTS profiles (
    user_id TEXT PRIMARY KEY,
    username TEXT NOT NULL CHECK(LENGTH(username) <= 100),
    grade_level TEXT NOT NULL DEFAULT 'junior_high',
    total_xp INTEGER NOT NULL DEFAULT 0 CHECK(total_xp >= 0),
    created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_profiles_total_xp ON profiles(total_xp DESC);

-- Mirrored discoveries; the phone's local copy is authoritative
CREATE TABLE IF NOT EXISTS discoveries (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    object_name TEXT NOT NULL,
    confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
    category TEXT NOT NULL,
    image_uri TEXT NOT NULL,
    fun_fact TEXT NOT NULL DEFAULT '',
    science_in_action TEXT NOT NULL DEFAULT '',
    why_it_matters TEXT NOT NULL DEFAULT '',
    try_this TEXT NOT NULL DEFAULT '',
    explore_further JSONB NOT NULL DEFAULT '[]',
    session_id TEXT,
    saved_at TIMESTAMPTZ NOT NULL,
    mirrored_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (user_id) REFERENCES profiles(user_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_discoveries_user ON discoveries(user_id);
CREATE INDEX IF NOT EXISTS idx_discoveries_saved_at ON discoveries(saved_at);

-- Uploaded discovery images, keyed by their storage path
CREATE TABLE IF NOT EXISTS discovery_images (
    path TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    content BYTEA NOT NULL,
    uploaded_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (user_id) REFERENCES profiles(user_id) ON DELETE CASCADE
);

-- XP event ledger; total_xp on profiles is derived from this
CREATE TABLE IF NOT EXISTS xp_events (
    id BIGSERIAL PRIMARY KEY,
    user_id TEXT NOT NULL,
    event_type TEXT NOT NULL,
    session_id TEXT,
    xp INTEGER NOT NULL CHECK(xp >= 0),
    created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (user_id) REFERENCES profiles(user_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_xp_events_user ON xp_events(user_id);

-- Achievement unlocks; one row per (learner, achievement), first unlock wins
CREATE TABLE IF NOT EXISTS achievements (
    user_id TEXT NOT NULL,
    achievement_id TEXT NOT NULL,
    session_id TEXT,
    unlocked_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (user_id, achievement_id),
    FOREIGN KEY (user_id) REFERENCES profiles(user_id) ON DELETE CASCADE
);
`
