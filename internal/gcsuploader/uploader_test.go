package gcsuploader

import "testing"

func TestParseGCSURI(t *testing.T) {
	tests := []struct {
		uri        string
		wantBucket string
		wantObject string
		wantErr    bool
	}{
		{uri: "gs://exports-bucket/exports/u1/snap.json", wantBucket: "exports-bucket", wantObject: "exports/u1/snap.json"},
		{uri: "gs://bucket/file.json", wantBucket: "bucket", wantObject: "file.json"},
		{uri: "s3://bucket/file.json", wantErr: true},
		{uri: "gs://bucket", wantErr: true},
		{uri: "gs://bucket/", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			bucket, object, err := ParseGCSURI(tt.uri)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseGCSURI(%q) expected error", tt.uri)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseGCSURI(%q): %v", tt.uri, err)
			}
			if bucket != tt.wantBucket || object != tt.wantObject {
				t.Errorf("ParseGCSURI(%q) = %q, %q", tt.uri, bucket, object)
			}
		})
	}
}

func TestObjectURIRoundTrip(t *testing.T) {
	uri := ObjectURI("b", "exports/u1/x.json")
	bucket, object, err := ParseGCSURI(uri)
	if err != nil || bucket != "b" || object != "exports/u1/x.json" {
		t.Errorf("round trip of %q gave %q, %q, %v", uri, bucket, object, err)
	}
}
