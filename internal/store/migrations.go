package store

const schema = `
CREATE TABLE IF NOT EXISTS analyses (
    id           TEXT PRIMARY KEY,
    blog_id      TEXT NOT NULL,
    keyword      TEXT NOT NULL,
    probability  INTEGER NOT NULL DEFAULT 0,
    rank_best    INTEGER NOT NULL DEFAULT 0,
    rank_worst   INTEGER NOT NULL DEFAULT 0,
    difficulty   TEXT NOT NULL DEFAULT '',
    result       TEXT NOT NULL DEFAULT '{}',
    created_at   DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_analyses_blog ON analyses(blog_id);
CREATE INDEX IF NOT EXISTS idx_analyses_keyword ON analyses(keyword);
CREATE INDEX IF NOT EXISTS idx_analyses_created ON analyses(created_at);

CREATE TABLE IF NOT EXISTS score_history (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    blog_id     TEXT NOT NULL,
    total_score REAL NOT NULL,
    level       INTEGER NOT NULL,
    grade       TEXT NOT NULL DEFAULT '',
    checked_at  DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_history_blog ON score_history(blog_id);
CREATE INDEX IF NOT EXISTS idx_history_checked ON score_history(checked_at);

CREATE TABLE IF NOT EXISTS weight_sets (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    payload    TEXT NOT NULL,
    trained_at DATETIME NOT NULL,
    active     BOOLEAN NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_weight_sets_active ON weight_sets(active);
`
