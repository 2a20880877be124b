package io

import (
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
	"testing"
)

func TestCreateAll(t *testing.T) {

	t.Run("it creates a file in directory", func(t *testing.T) {
		defaultUmask := syscall.Umask(0)
		defer syscall.Umask(defaultUmask)

		root, err := os.MkdirTemp("", "")
		if err != nil {
			t.Fatal("fail to create workdir.", err)
		}
		defer os.RemoveAll(root)

		CreateAll(filepath.Join(root, "foo", "bar", "targetFile"), 0700, 0707)

		for _, dir := range []string{
			filepath.Join(root, "foo"),
			filepath.Join(root, "foo", "bar"),
		} {
			dirStat, err := os.Stat(dir)
			if err != nil || !dirStat.IsDir() {
				t.Fatal("cannot create directory (stat, err):", dirStat, err)
			}
			if dirStat.Mode().Perm() != 0707 {
				t.Fatal("directory mod is wrong. (actual, expected): ", dirStat.Mode(), fs.FileMode(0707))
			}
		}

		fStat, err := os.Stat(filepath.Join(root, "foo", "bar", "targetFile"))
		if err != nil || fStat.IsDir() {
			t.Fatal("cannot create targetFile (stat, err):", fStat, err)
		}
		if fStat.Mode().Perm() != 0700 {
			t.Fatal("target file mod is wrong. (actual, expected): ", fStat.Mode(), fs.FileMode(0700))
		}
	})

	t.Run("it creates a file directly", func(t *testing.T) {
		defaultUmask := syscall.Umask(0)
		defer syscall.Umask(defaultUmask)

		root, err := os.MkdirTemp("", "")
		if err != nil {
			t.Fatal("fail to create workdir.", err)
		}
		defer os.RemoveAll(root)

		CreateAll(filepath.Join(root, "targetFile"), 0777, 0700)

		fStat, err := os.Stat(filepath.Join(root, "targetFile"))
		if err != nil || fStat.IsDir() || !fStat.Mode().IsRegular() {
			t.Fatal("cannot create targetFile (stat, err):", fStat, err)
		}
		if fStat.Mode().Perm() != 0777 {
			t.Fatal("target file mod is wrong. (actual, expected): ", fStat.Mode(), fs.FileMode(0777))
		}
	})
}

func TestDirCopy(t *testing.T) {

	t.Run("it copies a directory tree", func(t *testing.T) {
		defaultUmask := syscall.Umask(0)
		defer syscall.Umask(defaultUmask)

		src, err := os.MkdirTemp("", "")
		if err != nil {
			t.Fatal("fail to create workdir.", err)
		}
		defer os.RemoveAll(src)

		for name, content := range map[string]string{
			"1/00-version.sql":  `create table "schema_version" ("version" int not null);`,
			"1/01-model.sql":    `create table "model" ("model_id" varchar(36) primary key);`,
			"1/02-instance.sql": `create table "instance" ("id" varchar(36) primary key);`,
			"2/00-catalog.sql":  `insert into "model" ("model_id") values ('model-a');`,
		} {
			f, err := CreateAll(filepath.Join(src, name), 0644, 0755)
			if err != nil {
				t.Fatal("fail to create fixture file.", err)
			}
			if _, err := f.WriteString(content); err != nil {
				t.Fatal("fail to write fixture file.", err)
			}
			f.Close()
		}

		dest, err := os.MkdirTemp("", "")
		if err != nil {
			t.Fatal("fail to create workdir.", err)
		}
		defer os.RemoveAll(dest)

		if err := DirCopy(src, dest); err != nil {
			t.Fatal("DirCopy causes error:", err)
		}

		for name, content := range map[string]string{
			"1/00-version.sql":  `create table "schema_version" ("version" int not null);`,
			"1/01-model.sql":    `create table "model" ("model_id" varchar(36) primary key);`,
			"1/02-instance.sql": `create table "instance" ("id" varchar(36) primary key);`,
			"2/00-catalog.sql":  `insert into "model" ("model_id") values ('model-a');`,
		} {
			copied := filepath.Join(dest, name)

			stat, err := os.Stat(copied)
			if err != nil {
				t.Fatal("copied file is not found:", copied, err)
			}
			if stat.Mode().Perm() != 0644 {
				t.Error("copied file mod is wrong. (actual, expected): ", stat.Mode(), fs.FileMode(0644))
			}

			actual, err := os.ReadFile(copied)
			if err != nil {
				t.Fatal("fail to read copied file:", copied, err)
			}
			if string(actual) != content {
				t.Errorf("unmatch: content of %s: %s != %s", name, actual, content)
			}
		}
	})

	t.Run("it copies into an existing directory", func(t *testing.T) {
		src, err := os.MkdirTemp("", "")
		if err != nil {
			t.Fatal("fail to create workdir.", err)
		}
		defer os.RemoveAll(src)

		f, err := CreateAll(filepath.Join(src, "1", "00-version.sql"), 0644, 0755)
		if err != nil {
			t.Fatal("fail to create fixture file.", err)
		}
		if _, err := f.WriteString("select 1;"); err != nil {
			t.Fatal("fail to write fixture file.", err)
		}
		f.Close()

		dest, err := os.MkdirTemp("", "")
		if err != nil {
			t.Fatal("fail to create workdir.", err)
		}
		defer os.RemoveAll(dest)
		if err := os.Mkdir(filepath.Join(dest, "1"), 0755); err != nil {
			t.Fatal("fail to create destination directory.", err)
		}

		if err := DirCopy(src, dest); err != nil {
			t.Fatal("DirCopy causes error:", err)
		}

		actual, err := os.ReadFile(filepath.Join(dest, "1", "00-version.sql"))
		if err != nil {
			t.Fatal("fail to read copied file:", err)
		}
		if string(actual) != "select 1;" {
			t.Errorf("unmatch: content: %s != %s", actual, "select 1;")
		}
	})
}
