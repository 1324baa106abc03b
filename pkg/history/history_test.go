package history

import (
	"io/ioutil"
	"os"
	"path"
	"testing"
	"time"
)

func TestRecordAndReadHistory(t *testing.T) {
	tmpDir, err := ioutil.TempDir(".", "var")
	if err != nil {
		t.Fatalf("create temp dir failed %v", err)
	}

	defer os.RemoveAll(tmpDir)

	var r *Recorder
	name := path.Join(tmpDir, "history.log")
	r, err = NewRecorder(name)
	if err != nil {
		t.Fatalf("create recorder failed %v", err)
	}

	records := []Record{
		{TaskID: 0, Index: 0, ClientID: 0, SQL: "BEGIN", Success: true},
		{TaskID: 0, Index: 1, ClientID: 1, SQL: "UPDATE t SET v = 1", Success: true, RowsAffected: 1, Duration: time.Millisecond},
		{TaskID: 0, Index: 2, ClientID: 0, SQL: "INSERT INTO t VALUES (1)", Error: "Error 1062: Duplicate entry", ErrorClass: "duplicate-entry"},
		{Round: 1, TaskID: 1, Index: 0, ClientID: 1, SQL: "SELECT\n1"},
	}
	for _, rec := range records {
		if err = r.Record(rec); err != nil {
			t.Fatalf("record failed %v", err)
		}
	}
	if err = r.Close(); err != nil {
		t.Fatalf("close recorder failed %v", err)
	}

	read, err := ReadHistory(name)
	if err != nil {
		t.Fatal(err)
	}
	if len(read) != len(records) {
		t.Fatalf("records %v mismatchs read %v", records, read)
	}
	for idx, rec := range records {
		rec.RunID = r.RunID()
		if read[idx] != rec {
			t.Fatalf("record %#v mismatchs read %#v", rec, read[idx])
		}
	}
}

func TestRecorderRunID(t *testing.T) {
	tmpDir, err := ioutil.TempDir(".", "var")
	if err != nil {
		t.Fatalf("create temp dir failed %v", err)
	}
	defer os.RemoveAll(tmpDir)

	r1, err := NewRecorder(path.Join(tmpDir, "a.log"))
	if err != nil {
		t.Fatal(err)
	}
	defer r1.Close()
	r2, err := NewRecorder(path.Join(tmpDir, "b.log"))
	if err != nil {
		t.Fatal(err)
	}
	defer r2.Close()

	if r1.RunID() == "" || r1.RunID() == r2.RunID() {
		t.Fatalf("expect distinct run ids, got %q and %q", r1.RunID(), r2.RunID())
	}
}

func TestNilRecorder(t *testing.T) {
	var r *Recorder
	if err := r.Record(Record{SQL: "SELECT 1"}); err != nil {
		t.Fatalf("nil recorder should drop records, got %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}
}
