package supabase

// SetupSQL creates the mirror table and its supporting trigger. Run it in
// the Supabase SQL editor before enabling the mirror.
const SetupSQL = `-- Run this in your Supabase SQL editor to create the required table.

CREATE TABLE IF NOT EXISTS ai_card_content (
    note_id      TEXT PRIMARY KEY,
    deck_name    TEXT NOT NULL,
    front        TEXT NOT NULL,
    ai_content   TEXT NOT NULL,
    model_used   TEXT DEFAULT '',
    prompt_used  TEXT DEFAULT '',
    created_at   TIMESTAMPTZ DEFAULT NOW(),
    updated_at   TIMESTAMPTZ DEFAULT NOW()
);

-- Auto-update updated_at on row modification
CREATE OR REPLACE FUNCTION update_updated_at()
RETURNS TRIGGER AS $$
BEGIN
    NEW.updated_at = NOW();
    RETURN NEW;
END;
$$ LANGUAGE plpgsql;

CREATE TRIGGER ai_card_content_updated_at
    BEFORE UPDATE ON ai_card_content
    FOR EACH ROW EXECUTE FUNCTION update_updated_at();

-- Enable Row Level Security (optional but recommended)
ALTER TABLE ai_card_content ENABLE ROW LEVEL SECURITY;

-- Allow anonymous reads and writes (adjust as needed)
CREATE POLICY "Allow anon access" ON ai_card_content
    FOR ALL USING (true) WITH CHECK (true);
`
