package migrations

// PostgresSchema creates the audit table and its lookup indexes.
var PostgresSchema = `
CREATE TABLE IF NOT EXISTS audit_log (
    id UUID PRIMARY KEY,
    request_id UUID NOT NULL,
    stage VARCHAR(10) NOT NULL, -- 'request' or 'response'
    timestamp TIMESTAMP WITH TIME ZONE NOT NULL,
    method VARCHAR(10),
    url TEXT,
    path TEXT,
    path_params JSONB,
    query_params JSONB,
    headers JSONB,
    body JSONB,
    client_ip VARCHAR(45),
    user_agent TEXT,
    status_code INTEGER,
    duration INTERVAL,
    content_length BIGINT,
    error TEXT
);

CREATE INDEX IF NOT EXISTS idx_audit_log_request_id ON audit_log(request_id);
CREATE INDEX IF NOT EXISTS idx_audit_log_stage ON audit_log(stage);
CREATE INDEX IF NOT EXISTS idx_audit_log_request_stage ON audit_log(request_id, stage);
CREATE INDEX IF NOT EXISTS idx_audit_log_timestamp ON audit_log(timestamp);
`

// OracleSchema guards table creation because Oracle has no CREATE TABLE IF
// NOT EXISTS.
var OracleSchema = `
BEGIN
    EXECUTE IMMEDIATE 'CREATE TABLE audit_log (
        id VARCHAR2(36) PRIMARY KEY,
        request_id VARCHAR2(36) NOT NULL,
        stage VARCHAR2(10) NOT NULL,
        timestamp TIMESTAMP WITH TIME ZONE NOT NULL,
        method VARCHAR2(10),
        url CLOB,
        path CLOB,
        headers CLOB,
        body CLOB,
        client_ip VARCHAR2(45),
        user_agent CLOB,
        status_code NUMBER(5),
        duration_ms NUMBER(19),
        content_length NUMBER(19),
        error CLOB
    )';
EXCEPTION
    WHEN OTHERS THEN
        IF SQLCODE != -955 THEN
            RAISE;
        END IF;
END;
`
